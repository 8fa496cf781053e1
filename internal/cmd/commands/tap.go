// Package commands holds the setup shared by the tap's subcommands.
package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/tap-bamboohr/internal/cmd/base"
	"github.com/hashicorp-forge/tap-bamboohr/internal/config"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/bamboohr"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/photostore"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/streams"
)

// ConfigEnv names the environment variable holding the default config path.
const ConfigEnv = "TAP_BAMBOOHR_CONFIG"

// TapFlags are the flags shared by commands that talk to BambooHR.
type TapFlags struct {
	Config   string
	Streams  string
	LogLevel string
}

// Register adds the shared flags to f.
func (t *TapFlags) Register(f *base.FlagSet) {
	f.StringVar(
		&t.Config, "config", "",
		"["+ConfigEnv+"] Path to the HCL configuration file",
	)
	f.StringVar(
		&t.Streams, "streams", "",
		"Comma-separated stream names; overrides the streams setting",
	)
	f.StringVar(
		&t.LogLevel, "log-level", "",
		"Log level (trace, debug, info, warn, error)",
	)
}

// Tap is a loaded configuration with the streams it selects.
type Tap struct {
	Config  *config.Config
	Streams []streams.Stream
}

// Setup loads the configuration and builds the selected streams. The
// configured photo store is only created when withPhotoStore is set.
func Setup(ctx context.Context, fs afero.Fs, flags *TapFlags, log hclog.Logger, withPhotoStore bool) (*Tap, error) {
	if flags.LogLevel != "" {
		level := hclog.LevelFromString(flags.LogLevel)
		if level == hclog.NoLevel {
			return nil, fmt.Errorf("invalid log level %q", flags.LogLevel)
		}
		log.SetLevel(level)
	}

	path := flags.Config
	if val, ok := os.LookupEnv(ConfigEnv); ok && path == "" {
		path = val
	}
	if path == "" {
		return nil, fmt.Errorf("config path is required (-config or %s)", ConfigEnv)
	}

	loader := &config.Loader{FS: fs}
	cfg, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	var store photostore.Store
	if withPhotoStore {
		store, err = cfg.NewPhotoStore(ctx, fs, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create photo store: %w", err)
		}
	}

	opts, err := cfg.StreamOptions(fs, store)
	if err != nil {
		return nil, err
	}

	names := cfg.Streams
	if flags.Streams != "" {
		names = splitList(flags.Streams)
	}
	opts.Streams = names

	client, err := bamboohr.NewClient(cfg.ClientConfig(), log)
	if err != nil {
		return nil, err
	}

	all, err := streams.Build(ctx, client, opts, log)
	if err != nil {
		return nil, err
	}

	selected, err := streams.Select(all, names)
	if err != nil {
		return nil, err
	}

	log.Debug("streams selected", "count", len(selected), "available", len(all))
	return &Tap{Config: cfg, Streams: selected}, nil
}

// NewFlagSet returns a flag set for a command that reports parse errors
// instead of exiting.
func NewFlagSet(name string) *base.FlagSet {
	return base.NewFlagSet(flag.NewFlagSet(name, flag.ContinueOnError))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

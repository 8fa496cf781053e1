package sync

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/hashicorp-forge/tap-bamboohr/internal/cmd/base"
	"github.com/hashicorp-forge/tap-bamboohr/internal/cmd/commands"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/runner"
)

type Command struct {
	*base.Command

	// FS and Out default to the OS filesystem and stdout.
	FS  afero.Fs
	Out io.Writer

	flags           commands.TapFlags
	flagMaxParallel int
}

func (c *Command) Synopsis() string {
	return "Extract records from BambooHR"
}

func (c *Command) Help() string {
	return `Usage: tap-bamboohr sync -config=config.hcl

  Extract every selected stream. Each stream writes a SCHEMA message, its
  RECORD messages and a final STATE message to stdout, or to the configured
  Kafka topic. A failing stream does not stop the others.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := commands.NewFlagSet("sync")
	c.flags.Register(f)
	f.IntVar(
		&c.flagMaxParallel, "max-parallel", 0,
		"Streams extracted at once; overrides the max_parallel setting",
	)
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs, out := c.FS, c.Out
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if out == nil {
		out = os.Stdout
	}

	tap, err := commands.Setup(ctx, fs, &c.flags, c.Log, true)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error initializing tap: %v", err))
		return 1
	}

	sink, err := tap.Config.NewSink(out, c.Log)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating output: %v", err))
		return 1
	}
	defer sink.Close()

	maxParallel := tap.Config.MaxParallel
	if c.flagMaxParallel > 0 {
		maxParallel = c.flagMaxParallel
	}

	r, err := runner.New(runner.Config{
		Sink:        sink,
		MaxParallel: maxParallel,
		Logger:      c.Log,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating runner: %v", err))
		return 1
	}

	results, err := r.Run(ctx, tap.Streams)
	total := 0
	for _, res := range results {
		total += res.Records
	}
	c.Log.Info("sync finished", "streams", len(results), "records", total)

	if err != nil {
		c.UI.Error(fmt.Sprintf("sync failed: %v", err))
		return 1
	}
	return 0
}

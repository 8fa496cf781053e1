package discover

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

	flags commands.TapFlags
}

func (c *Command) Synopsis() string {
	return "Print the catalog of streams"
}

func (c *Command) Help() string {
	return `Usage: tap-bamboohr discover -config=config.hcl

  Fetch field metadata from BambooHR and print the catalog of every selected
  stream with its schema and key properties.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := commands.NewFlagSet("discover")
	c.flags.Register(f)
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

	tap, err := commands.Setup(ctx, fs, &c.flags, c.Log, false)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error initializing tap: %v", err))
		return 1
	}

	catalog, discoverErr := runner.Discover(ctx, tap.Streams)
	if _, err := catalog.WriteTo(out); err != nil {
		c.UI.Error(fmt.Sprintf("error writing catalog: %v", err))
		return 1
	}
	if discoverErr != nil {
		c.UI.Error(fmt.Sprintf("some streams could not be discovered: %v", discoverErr))
		return 1
	}

	return 0
}

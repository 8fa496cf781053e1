package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/tap-bamboohr/internal/cmd/base"
	"github.com/hashicorp-forge/tap-bamboohr/internal/cmd/commands/discover"
	synccmd "github.com/hashicorp-forge/tap-bamboohr/internal/cmd/commands/sync"
	"github.com/hashicorp-forge/tap-bamboohr/internal/cmd/commands/version"
)

// Commands returns the command factories of the CLI.
func Commands(log hclog.Logger, ui cli.Ui) map[string]cli.CommandFactory {
	b := base.NewCommand(log, ui)

	return map[string]cli.CommandFactory{
		"discover": func() (cli.Command, error) {
			return &discover.Command{Command: b}, nil
		},
		"sync": func() (cli.Command, error) {
			return &synccmd.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}

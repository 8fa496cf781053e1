package version

import (
	"github.com/hashicorp-forge/tap-bamboohr/internal/cmd/base"
	"github.com/hashicorp-forge/tap-bamboohr/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return `Usage: tap-bamboohr version

  Print the version of the tap.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}

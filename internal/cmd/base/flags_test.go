package base

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagSet_Help(t *testing.T) {
	var config string
	var verbose bool
	f := NewFlagSet(flag.NewFlagSet("sync", flag.ContinueOnError))
	f.StringVar(&config, "config", "config.hcl", "Path to the configuration file")
	f.BoolVar(&verbose, "verbose", false, "Log more")

	assert.Equal(t, `

Options:

  -config=config.hcl
      Path to the configuration file

  -verbose
      Log more`, f.Help())
}

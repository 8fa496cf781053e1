package main

import (
	"os"

	"github.com/hashicorp-forge/tap-bamboohr/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}

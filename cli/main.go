package main

import (
	"os"

	"github.com/fractional-company/vaultctl/internal/cli"
	"github.com/fractional-company/vaultctl/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	config.SetBuildFlags(version, commit, date)
	os.Exit(cli.Execute())
}

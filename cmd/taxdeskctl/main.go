package main

import (
	"os"

	"github.com/kengo-k/taxdesk-sub002/internal/cli"
	"github.com/kengo-k/taxdesk-sub002/internal/commands"
)

func main() {
	cli.LoadEnvFile()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

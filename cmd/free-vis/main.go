// Package main provides the entry point for the free-vis CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/drakos74/free-vis/cmd/free-vis/commands"
	"github.com/rs/zerolog"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

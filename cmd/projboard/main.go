// Package main provides the entry point for the projboard CLI.
package main

import (
	"fmt"
	"os"

	"github.com/projboard/projboard/cmd/projboard/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

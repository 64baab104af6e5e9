// Package main is the main package for the ghtree CLI.
package main

import (
	"os"

	"github.com/holonoms/ghtree/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}

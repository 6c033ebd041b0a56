// Package main is the entry point for the flint CLI.
package main

import (
	"os"

	"github.com/mfriesel/flint/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

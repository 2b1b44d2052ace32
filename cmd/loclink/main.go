// Package main is the entry point for the loclink CLI.
package main

import (
	"os"

	"github.com/aidanlsb/loclink/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

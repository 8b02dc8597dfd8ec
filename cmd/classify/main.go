// Package main is the entry point for the offline classify CLI.
package main

import (
	"os"

	"github.com/bryanwahyu/componentlens/cmd/classify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

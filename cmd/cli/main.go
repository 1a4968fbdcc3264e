// Package main is the entry point for the ppp-pricing CLI.
package main

import (
	"os"

	"ppp-pricing/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main provides the countyjoin command.
package main

import (
	"os"

	"github.com/leapstack-labs/countyjoin/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

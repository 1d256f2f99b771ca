// Package main is the entry point for the partialweek binary.
package main

import (
	"os"

	"github.com/dev-loop1/partial-week-converter/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

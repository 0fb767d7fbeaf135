// Package main provides the sqlrules command line interface.
package main

import (
	"os"

	"github.com/earth-metabolome-initiative/sql-rules/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

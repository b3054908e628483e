// Package main is the entry point for the anfrage CLI tool.
package main

import (
	"os"

	"github.com/good-yellow-bee/anfrage/cmd/anfragectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

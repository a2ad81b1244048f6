package main

import (
	"fmt"
	"os"

	"github.com/pactlint/pactlint/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pactlint:", err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/aparna-hs/literally-invented/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

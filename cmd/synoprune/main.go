package main

import (
	"os"

	"github.com/synoprune/synoprune/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

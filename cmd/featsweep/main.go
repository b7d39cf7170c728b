package main

import (
	"os"

	"github.com/orbislab/featsweep/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

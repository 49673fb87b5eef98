package main

import (
	"os"

	"github.com/cartoflow/gis-copilot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

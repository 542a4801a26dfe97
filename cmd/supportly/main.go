package main

import (
	"os"

	"github.com/all-black-493/supportly/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

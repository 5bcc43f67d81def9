package main

import (
	"os"

	"github.com/relaxml/relaxml/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/gnoverse/regexr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

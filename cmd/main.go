package main

import (
	"os"

	"github.com/jurisgraph/jurisgraph/cmd/jurisgraph"
)

func main() {
	if err := jurisgraph.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/bladeworks/qloft/cmd/qloft/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

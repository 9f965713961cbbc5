package main

import (
	"os"

	"github.com/dukerupert/householder/cmd/householder/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

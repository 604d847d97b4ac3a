package main

import (
	"os"

	"confull/cmd/confull/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

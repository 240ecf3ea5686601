package main

import (
	"os"

	"fusionswap/cmd/fusionswap/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

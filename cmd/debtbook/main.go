package main

import (
	"os"

	"github.com/mmynk/debtbook/cmd/debtbook/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

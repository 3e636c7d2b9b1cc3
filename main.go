package main

import (
	"os"

	"github.com/trknhr/ghostguess/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

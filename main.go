package main

import (
	"os"

	"github.com/renalog/renalog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}

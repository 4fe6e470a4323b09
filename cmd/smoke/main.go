package main

import (
	"os"

	"github.com/fatih/color"
)

// exitCode is set by the run command: 0 when every selected scenario passed.
var exitCode int

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(2)
	}
	os.Exit(exitCode)
}

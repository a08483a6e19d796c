package main

import (
	"fmt"
	"os"

	"github.com/harrison/paver/internal/cmd"
)

// Version is the current version of the paver application
const Version = "0.1.0"

func main() {
	if cmd.Version == "dev" {
		cmd.Version = Version
	}
	rootCmd := cmd.NewRootCommand()

	err := rootCmd.Execute()
	code, show := cmd.ExitCode(err)
	if show {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}

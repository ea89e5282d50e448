package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/figure-extractor/cmd/figure-extractor/commands"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	commands.SetVersion(Version, BuildTime, GitCommit)

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

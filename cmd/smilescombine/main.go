// Command smilescombine enumerates substituted derivatives of a skeleton
// SMILES and serves the same operations over HTTP and Kafka.
package main

import (
	"os"

	"github.com/turtacn/smilescombine/internal/interfaces/cli"
)

// Set via -ldflags "-X main.version=...".
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate

	// Execute reports the error on stderr itself.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending

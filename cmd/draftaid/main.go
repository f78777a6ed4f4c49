// Command draftaid analyses essay drafts and reports writing
// suggestions.
package main

import (
	"os"

	"github.com/draftaid-io/draftaid/internal/adapters/driving/cli"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}

// ltmc: long-term memory and context linking for conversational agents.
//
// Usage:
//
//	ltmc store notes.md          # chunk, embed and store a file
//	ltmc retrieve "deploy steps" # semantic retrieval
//	ltmc mcp serve               # MCP server over stdio
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/ltmc/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ltmc/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := file.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
	}

	cli.SetVersion(version)
	cli.SetInitializer(initialize)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dshills/booksearch-mcp/internal/cli"
	"github.com/dshills/booksearch-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("booksearch MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	if err := cli.Execute(context.Background(), version, buildTime); err != nil {
		// cobra has already printed the error to stderr
		os.Exit(1)
	}
}

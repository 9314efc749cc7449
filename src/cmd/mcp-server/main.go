// Package main provides the MCP server entry point for pipetriage. It
// exposes build triage over stdio via the triage_build and get_task_log
// tools.
package main

import (
	"fmt"
	"os"

	_ "pipetriage/src/azdevops" // register the azdevops provider
	"pipetriage/src/config"
	"pipetriage/src/mcp"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	server := mcp.NewServer(cfg)

	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

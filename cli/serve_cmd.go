package main

import (
	"fmt"
	"os"

	"github.com/medsum/medsum/server"
)

// runServe starts the MCP server on stdio.
func runServe(g globals, args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: medsum serve")
		return 2
	}

	cfg, logger, err := g.setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	r, err := cfg.NewRelay(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	srv := server.New(version, r, logger)
	if err := srv.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "error: MCP server failed: %v\n", err)
		return 2
	}
	return 0
}

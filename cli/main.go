// Package main is the entry point for the medsum CLI.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/medsum/medsum/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// globals holds the flags accepted before the command name.
type globals struct {
	configPath string
	verbose    bool
}

// setup loads the config and builds the logger every command shares.
// Logs go to stderr so stdout stays clean for command output.
func (g globals) setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	if g.verbose {
		cfg.LogLevel = "debug"
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// run executes the CLI and returns the exit code.
// 0 = success, 1 = validation warning (a field was left empty), 2 = error.
func run(args []string) int {
	fs := flag.NewFlagSet("medsum", flag.ContinueOnError)

	var (
		g           globals
		versionFlag bool
	)

	fs.StringVar(&g.configPath, "config", config.DefaultPath, "path to the YAML config file")
	fs.BoolVar(&g.verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&g.verbose, "v", false, "enable debug logging (shorthand)")
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: medsum [flags] <command> [command flags]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  explain   Explain a diagnosis and its medicines\n")
		fmt.Fprintf(os.Stderr, "  form      Interactive terminal form\n")
		fmt.Fprintf(os.Stderr, "  web       Serve the web form\n")
		fmt.Fprintf(os.Stderr, "  serve     Start MCP server on stdio\n")
		fmt.Fprintf(os.Stderr, "  grpc      Serve the gRPC relay\n")
		fmt.Fprintf(os.Stderr, "  version   Print version and exit\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if versionFlag {
		printVersion()
		return 0
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: medsum <command> [flags]")
		return 2
	}

	command := remaining[0]
	switch command {
	case "explain":
		return runExplain(g, remaining[1:])
	case "form":
		return runForm(g, remaining[1:])
	case "web":
		return runWeb(g, remaining[1:])
	case "serve":
		return runServe(g, remaining[1:])
	case "grpc":
		return runGRPC(g, remaining[1:])
	case "version":
		printVersion()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		fmt.Fprintln(os.Stderr, "Usage: medsum <command> [flags]")
		return 2
	}
}

func printVersion() {
	fmt.Printf("medsum %s (commit: %s, built: %s)\n", version, commit, date)
}

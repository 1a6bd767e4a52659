package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/medsum/medsum/cli/tui"
)

// runForm opens the interactive terminal form.
func runForm(g globals, args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: medsum form")
		return 2
	}
	if !isTerminal() {
		fmt.Fprintln(os.Stderr, "error: form needs an interactive terminal; use 'medsum explain' instead")
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

	p := tea.NewProgram(tui.New(context.Background(), r), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: TUI failed: %v\n", err)
		return 2
	}
	return 0
}

// isTerminal returns true if both stdin and stdout are connected to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Package controller provides output adapters for displaying scanned targets.
package controller

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "buildscout.dev/pkg/buildscout/internal/model"
)

// Output formats accepted by NewUI.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatTUI   = "tui"
)

// UI defines how scan results are shown to the user.
// Implementations can use different output methods (table, YAML, TUI).
type UI interface {
	DisplayTargets(ctx context.Context, targets []m.ClassifiedTarget) error
	DisplayCategories(ctx context.Context, categories map[m.Action][]m.ClassifiedTarget) error
	DisplayDiff(ctx context.Context, diff string) error
	DisplayMessage(ctx context.Context, format string, args ...any)
}

// NewUI returns the UI for format. An empty format picks the TUI on a
// terminal and the table otherwise.
func NewUI(cmd *cobra.Command, format string, isTTY bool) (UI, error) {
	switch format {
	case "":
		if isTTY {
			return NewTUI(cmd), nil
		}

		return NewSimpleUI(cmd), nil
	case FormatTable:
		return NewSimpleUI(cmd), nil
	case FormatYAML:
		return NewYAMLUI(cmd), nil
	case FormatTUI:
		return NewTUI(cmd), nil
	}

	return nil, fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, FormatTable, FormatYAML, FormatTUI)
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

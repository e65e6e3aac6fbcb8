package controller

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	m "buildscout.dev/pkg/buildscout/internal/model"
)

// YAMLUI implements UI by writing machine-readable YAML documents.
type YAMLUI struct {
	cmd *cobra.Command
}

// NewYAMLUI creates a new YAMLUI.
func NewYAMLUI(cmd *cobra.Command) *YAMLUI {
	return &YAMLUI{cmd: cmd}
}

// DisplayTargets writes the targets as a YAML sequence.
func (y *YAMLUI) DisplayTargets(ctx context.Context, targets []m.ClassifiedTarget) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return y.encode(map[string]any{"targets": targets})
}

// DisplayCategories writes a mapping from action to targets.
func (y *YAMLUI) DisplayCategories(ctx context.Context, categories map[m.Action][]m.ClassifiedTarget) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return y.encode(map[string]any{"actions": categories})
}

// DisplayDiff writes the diff text as a YAML literal.
func (y *YAMLUI) DisplayDiff(ctx context.Context, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return y.encode(map[string]any{"changed": diff != "", "diff": diff})
}

// DisplayMessage writes the message as a YAML comment so the stream stays
// parseable.
func (y *YAMLUI) DisplayMessage(ctx context.Context, format string, args ...any) {
	if err := ctx.Err(); err != nil {
		return
	}

	_, _ = fmt.Fprintf(y.cmd.OutOrStdout(), "# "+format+"\n", args...)
}

func (y *YAMLUI) encode(value any) error {
	encoder := yaml.NewEncoder(y.cmd.OutOrStdout())
	encoder.SetIndent(2)

	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return encoder.Close()
}

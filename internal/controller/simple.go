package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "buildscout.dev/pkg/buildscout/internal/model"
)

// SimpleUI implements UI by rendering tables to the command output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayTargets prints one row per target.
func (s *SimpleUI) DisplayTargets(ctx context.Context, targets []m.ClassifiedTarget) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderTargetTable(targets))

	return nil
}

// DisplayCategories prints one table per action.
func (s *SimpleUI) DisplayCategories(ctx context.Context, categories map[m.Action][]m.ClassifiedTarget) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, action := range m.AllActions {
		targets, ok := categories[action]
		if !ok {
			continue
		}

		s.printf("\n%s (%d)\n%s", strings.ToUpper(string(action)), len(targets), renderTargetTable(targets))
	}

	return nil
}

// DisplayDiff prints a unified diff, or a note when there is none.
func (s *SimpleUI) DisplayDiff(ctx context.Context, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if diff == "" {
		s.printf("No target changes.\n")
		return nil
	}

	s.printf("%s", diff)

	return nil
}

// DisplayMessage prints a formatted line.
func (s *SimpleUI) DisplayMessage(ctx context.Context, format string, args ...any) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf(format+"\n", args...)
}

func renderTargetTable(targets []m.ClassifiedTarget) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Label", "Rule", "Language", "Actions"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
	})

	for _, c := range targets {
		table.Append([]string{c.Target.Label, c.Target.RuleType, string(c.Language), joinActions(c.Actions)})
	}

	table.SetFooter([]string{fmt.Sprintf("Total targets %d", len(targets)), "", "", ""})
	table.Render()

	return tableBuffer.String()
}

func joinActions(actions []m.Action) string {
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, string(a))
	}

	if len(names) == 0 {
		return "-"
	}

	return strings.Join(names, ",")
}

func (s *SimpleUI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

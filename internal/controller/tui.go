package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	m "buildscout.dev/pkg/buildscout/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	filterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TUI implements UI using Bubble Tea for interactive browsing.
type TUI struct {
	cmd *cobra.Command
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{cmd: cmd}
}

// DisplayTargets opens a scrollable target list and blocks until the user
// quits.
func (p *TUI) DisplayTargets(ctx context.Context, targets []m.ClassifiedTarget) error {
	program := tea.NewProgram(
		newTargetListModel(targets),
		tea.WithContext(ctx),
		tea.WithInput(p.cmd.InOrStdin()),
		tea.WithOutput(p.cmd.OutOrStdout()),
	)

	_, err := program.Run()
	if err != nil {
		return fmt.Errorf("run target browser: %w", err)
	}

	return nil
}

// DisplayCategories opens the target list with every classified target
// once; the action filter key narrows it to one category.
func (p *TUI) DisplayCategories(ctx context.Context, categories map[m.Action][]m.ClassifiedTarget) error {
	seen := map[string]bool{}

	var targets []m.ClassifiedTarget

	for _, action := range m.AllActions {
		for _, c := range categories[action] {
			id := c.Target.Label + " " + c.Target.RuleType + " " + string(c.Target.Workspace)
			if seen[id] {
				continue
			}

			seen[id] = true
			targets = append(targets, c)
		}
	}

	return p.DisplayTargets(ctx, targets)
}

// DisplayDiff prints the diff without entering interactive mode.
func (p *TUI) DisplayDiff(ctx context.Context, diff string) error {
	return NewSimpleUI(p.cmd).DisplayDiff(ctx, diff)
}

// DisplayMessage prints a formatted line.
func (p *TUI) DisplayMessage(ctx context.Context, format string, args ...any) {
	NewSimpleUI(p.cmd).DisplayMessage(ctx, format, args...)
}

type keyMap struct {
	Quit     key.Binding
	Down     key.Binding
	Up       key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageDown key.Binding
	PageUp   key.Binding
	Filter   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		PageDown: key.NewBinding(key.WithKeys("d", "pgdown"), key.WithHelp("d", "page down")),
		PageUp:   key.NewBinding(key.WithKeys("u", "pgup"), key.WithHelp("u", "page up")),
		Filter:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "cycle action")),
	}
}

// filters cycles through "all" and then each action.
var filters = append([]m.Action{""}, m.AllActions...)

// targetListModel is the Bubble Tea model of the target browser.
type targetListModel struct {
	targets  []m.ClassifiedTarget
	keys     keyMap
	filter   int
	height   int
	offset   int
	quitting bool
}

func newTargetListModel(targets []m.ClassifiedTarget) targetListModel {
	return targetListModel{
		targets: targets,
		keys:    defaultKeyMap(),
	}
}

func (tm targetListModel) Init() tea.Cmd {
	return nil
}

func (tm targetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		tm.height = msg.Height
		tm.offset = min(tm.offset, tm.maxOffset())

		return tm, nil

	case tea.KeyMsg:
		return tm.handleKeyPress(msg)
	}

	return tm, nil
}

func (tm targetListModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, tm.keys.Quit):
		tm.quitting = true
		return tm, tea.Quit
	case key.Matches(msg, tm.keys.Down):
		tm.offset++
	case key.Matches(msg, tm.keys.Up):
		tm.offset--
	case key.Matches(msg, tm.keys.Top):
		tm.offset = 0
	case key.Matches(msg, tm.keys.Bottom):
		tm.offset = tm.maxOffset()
	case key.Matches(msg, tm.keys.PageDown):
		tm.offset += tm.itemsPerPage()
	case key.Matches(msg, tm.keys.PageUp):
		tm.offset -= tm.itemsPerPage()
	case key.Matches(msg, tm.keys.Filter):
		tm.filter = (tm.filter + 1) % len(filters)
		tm.offset = 0
	}

	tm.offset = max(0, min(tm.offset, tm.maxOffset()))

	return tm, nil
}

// visible returns the targets matching the current action filter.
func (tm targetListModel) visible() []m.ClassifiedTarget {
	action := filters[tm.filter]
	if action == "" {
		return tm.targets
	}

	var out []m.ClassifiedTarget

	for _, c := range tm.targets {
		if c.Has(action) {
			out = append(out, c)
		}
	}

	return out
}

// itemsPerPage calculates how many rows fit on screen. Header, summary and
// footer take six lines.
func (tm targetListModel) itemsPerPage() int {
	if tm.height == 0 {
		return 10
	}

	return max(1, tm.height-6)
}

func (tm targetListModel) maxOffset() int {
	return max(0, len(tm.visible())-tm.itemsPerPage())
}

func (tm targetListModel) View() string {
	if tm.quitting {
		return ""
	}

	var b strings.Builder

	filterName := "all"
	if action := filters[tm.filter]; action != "" {
		filterName = string(action)
	}

	visible := tm.visible()

	b.WriteString(titleStyle.Render("buildscout targets"))
	b.WriteString("  ")
	b.WriteString(filterStyle.Render("[" + filterName + "]"))
	fmt.Fprintf(&b, " %d of %d\n\n", len(visible), len(tm.targets))

	if len(visible) == 0 {
		b.WriteString("  No targets found\n")
	}

	end := min(tm.offset+tm.itemsPerPage(), len(visible))
	for _, c := range visible[tm.offset:end] {
		fmt.Fprintf(&b, "  %-48s %-20s %s\n",
			c.Target.Label,
			c.Target.RuleType,
			faintStyle.Render(string(c.Language)+" "+joinActions(c.Actions)))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(tm.helpLine()))
	b.WriteString("\n")

	return b.String()
}

func (tm targetListModel) helpLine() string {
	bindings := []key.Binding{tm.keys.Down, tm.keys.Up, tm.keys.PageDown, tm.keys.PageUp, tm.keys.Filter, tm.keys.Quit}

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}

	return strings.Join(parts, " • ")
}

package domain

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	m "buildscout.dev/pkg/buildscout/internal/model"
)

// DiffTargets renders a unified diff between two scans, one "label ruleType"
// line per target in label order. It returns "" when both scans hold the
// same targets.
func DiffTargets(previous, current []m.BuildTarget) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        targetLines(previous),
		B:        targetLines(current),
		FromFile: "cached",
		ToFile:   "current",
		Context:  0,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff targets: %w", err)
	}

	return text, nil
}

func targetLines(targets []m.BuildTarget) []string {
	sorted := SortTargets(targets)

	lines := make([]string, 0, len(sorted))
	for _, target := range sorted {
		lines = append(lines, fmt.Sprintf("%s %s\n", target.Label, target.RuleType))
	}

	return lines
}

package model

import "strings"

// Reserved rule types carried by synthetic aggregate targets. A colon can
// never appear in a declared rule identifier, so these cannot collide.
const (
	RuleTypeAggregateBuild = "aggregate:build"
	RuleTypeAggregateTest  = "aggregate:test"
)

// Markers searched for inside a rule type.
const (
	TestMarker   = "test"
	BinaryMarker = "_binary"
)

// OutputDir is the build output directory that predicted output paths are
// rooted at.
const OutputDir = "bazel-bin"

// BuildTarget is one buildable target, either declared in a build file or
// synthesized by the scanner.
type BuildTarget struct {
	Name             string   `yaml:"name"`
	RuleType         string   `yaml:"rule_type"`
	SourceExtensions []string `yaml:"source_extensions,omitempty"`
	Label            string   `yaml:"label"`
	OutputPath       string   `yaml:"output_path,omitempty"`
	Package          string   `yaml:"package"`
	Workspace        Path     `yaml:"workspace"`
}

// IsAggregate reports whether the target was synthesized rather than declared.
func (t BuildTarget) IsAggregate() bool {
	return IsAggregateRuleType(t.RuleType)
}

// IsAggregateRuleType reports whether ruleType is one of the reserved markers.
func IsAggregateRuleType(ruleType string) bool {
	return ruleType == RuleTypeAggregateBuild || ruleType == RuleTypeAggregateTest
}

// IsTestRuleType reports whether ruleType carries the test marker.
func IsTestRuleType(ruleType string) bool {
	return strings.Contains(ruleType, TestMarker)
}

// ScanResult is the outcome of one full scan.
type ScanResult struct {
	Targets []BuildTarget
	// HasTestRule is keyed by workspace root and then package path.
	HasTestRule map[Path]map[string]bool
}

package domain

import (
	"regexp"
	"sort"
	"strings"

	m "buildscout.dev/pkg/buildscout/internal/model"
)

// LanguagePrefix maps a rule-type prefix to a language tag.
type LanguagePrefix struct {
	Prefix   string
	Language m.Language
}

// LanguageTable is matched longest-prefix-wins, so entry order does not
// affect the result.
type LanguageTable []LanguagePrefix

// DefaultLanguageTable covers the common rule sets.
var DefaultLanguageTable = LanguageTable{
	{"cc_", m.LanguageCpp},
	{"cc_proto_", m.LanguageProto},
	{"c_", m.LanguageC},
	{"go_", m.LanguageGo},
	{"go_proto_", m.LanguageProto},
	{"py_", m.LanguagePython},
	{"py_proto_", m.LanguageProto},
	{"java_", m.LanguageJava},
	{"java_proto_", m.LanguageProto},
	{"android_", m.LanguageJava},
	{"kt_", m.LanguageKotlin},
	{"scala_", m.LanguageScala},
	{"rust_", m.LanguageRust},
	{"sh_", m.LanguageShell},
	{"proto_", m.LanguageProto},
	{"ts_", m.LanguageTypeScript},
	{"js_", m.LanguageJavaScript},
	{"nodejs_", m.LanguageJavaScript},
	{"swift_", m.LanguageSwift},
	{"objc_", m.LanguageObjC},
	{"csharp_", m.LanguageCSharp},
	{"container_", m.LanguageDocker},
	{"oci_", m.LanguageDocker},
}

// Lookup returns the language of ruleType. Aggregate rule types map to
// LanguageNotApplicable and unmatched ones to LanguageUnknown.
func (t LanguageTable) Lookup(ruleType string) m.Language {
	if m.IsAggregateRuleType(ruleType) {
		return m.LanguageNotApplicable
	}

	best := -1
	language := m.LanguageUnknown

	for _, entry := range t {
		if len(entry.Prefix) > best && strings.HasPrefix(ruleType, entry.Prefix) {
			best = len(entry.Prefix)
			language = entry.Language
		}
	}

	return language
}

var buildablePattern = regexp.MustCompile(`library|archive|module|bundle|package|object`)

// Actions returns the actions a target qualifies for, in display order.
func Actions(target m.BuildTarget) []m.Action {
	ruleType := target.RuleType

	switch {
	case ruleType == m.RuleTypeAggregateBuild:
		return []m.Action{m.ActionBuild}
	case m.IsTestRuleType(ruleType):
		if target.IsAggregate() {
			return []m.Action{m.ActionBuild, m.ActionTest}
		}

		return []m.Action{m.ActionBuild, m.ActionRun, m.ActionTest}
	case strings.Contains(ruleType, m.BinaryMarker):
		return []m.Action{m.ActionBuild, m.ActionRun}
	case buildablePattern.MatchString(ruleType):
		return []m.Action{m.ActionBuild}
	}

	return nil
}

// Classifier attaches a language and an action set to targets.
type Classifier struct {
	Languages LanguageTable
}

// NewClassifier creates a Classifier using table, or DefaultLanguageTable
// when table is empty.
func NewClassifier(table LanguageTable) *Classifier {
	if len(table) == 0 {
		table = DefaultLanguageTable
	}

	return &Classifier{Languages: table}
}

// Classify returns the classification of one target.
func (c *Classifier) Classify(target m.BuildTarget) m.ClassifiedTarget {
	return m.ClassifiedTarget{
		Target:   target,
		Language: c.Languages.Lookup(target.RuleType),
		Actions:  Actions(target),
	}
}

// ClassifyAll classifies every target, preserving order.
func (c *Classifier) ClassifyAll(targets []m.BuildTarget) []m.ClassifiedTarget {
	classified := make([]m.ClassifiedTarget, 0, len(targets))
	for _, target := range targets {
		classified = append(classified, c.Classify(target))
	}

	return classified
}

// Categorize groups targets by the actions they qualify for. Each group is
// sorted by label. Targets with no action appear in no group.
func (c *Classifier) Categorize(targets []m.BuildTarget) map[m.Action][]m.ClassifiedTarget {
	categories := map[m.Action][]m.ClassifiedTarget{}

	for _, target := range SortTargets(targets) {
		classified := c.Classify(target)
		for _, action := range classified.Actions {
			categories[action] = append(categories[action], classified)
		}
	}

	return categories
}

// SortTargets returns a copy of targets ordered by label, then rule type,
// then workspace.
func SortTargets(targets []m.BuildTarget) []m.BuildTarget {
	sorted := make([]m.BuildTarget, len(targets))
	copy(sorted, targets)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Label != b.Label {
			return a.Label < b.Label
		}

		if a.RuleType != b.RuleType {
			return a.RuleType < b.RuleType
		}

		return a.Workspace < b.Workspace
	})

	return sorted
}

package domain

import (
	"bufio"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	m "buildscout.dev/pkg/buildscout/internal/model"
)

const maxLineLength = 1 << 20

var (
	ruleOpenPattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	namePattern     = regexp.MustCompile(`\bname\s*=\s*"([^"]*)"`)
	srcsPattern     = regexp.MustCompile(`\bsrcs\s*=\s*\[([^\]]*)\]`)
)

// Extraction is the result of extracting one build file.
type Extraction struct {
	Targets     []m.BuildTarget
	HasTestRule bool
}

// ruleAccumulator collects the attributes of the rule currently open.
type ruleAccumulator struct {
	ruleType   string
	name       string
	extensions []string
}

// ExtractRules scans content line by line and returns the declared rules in
// declaration order. Only rule type, name and srcs are recognised, and each
// must start on the line it is declared on; values spanning several lines
// are not seen. When filter is non-nil, rule openers whose type does not
// match it close the previous rule without opening a new one.
func ExtractRules(content string, file m.BuildFile, filter *regexp.Regexp) (Extraction, error) {
	var (
		result  Extraction
		current *ruleAccumulator
	)

	flush := func() {
		if current == nil || current.ruleType == "" || current.name == "" {
			return
		}

		result.Targets = append(result.Targets, newTarget(file, current))

		if m.IsTestRuleType(current.ruleType) {
			result.HasTestRule = true
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		if match := ruleOpenPattern.FindStringSubmatchIndex(line); match != nil {
			flush()

			current = nil
			ruleType := line[match[2]:match[3]]

			if filter != nil && !filter.MatchString(ruleType) {
				continue
			}

			current = &ruleAccumulator{ruleType: ruleType}
			line = line[match[1]:]
		}

		if current == nil {
			continue
		}

		if name := namePattern.FindStringSubmatch(line); name != nil {
			current.name = name[1]
		}

		if srcs := srcsPattern.FindStringSubmatch(line); srcs != nil {
			current.extensions = sourceExtensions(srcs[1])
		}
	}

	if err := scanner.Err(); err != nil {
		return Extraction{}, fmt.Errorf("read %s: %w", file.FullPath, err)
	}

	flush()

	return result, nil
}

func sourceExtensions(list string) []string {
	var extensions []string

	for _, entry := range strings.Split(list, ",") {
		entry = strings.Trim(strings.TrimSpace(entry), `"'`)
		if entry == "" {
			continue
		}

		if ext := filepath.Ext(entry); ext != "" {
			extensions = append(extensions, ext)
		}
	}

	return extensions
}

func newTarget(file m.BuildFile, rule *ruleAccumulator) m.BuildTarget {
	return m.BuildTarget{
		Name:             rule.name,
		RuleType:         rule.ruleType,
		SourceExtensions: rule.extensions,
		Label:            Label(file.Package, rule.name),
		OutputPath:       OutputPath(file.Package, rule.name),
		Package:          file.Package,
		Workspace:        file.Workspace,
	}
}

// Label returns the canonical label of target name in package pkg.
func Label(pkg, name string) string {
	return "//" + pkg + ":" + name
}

// OutputPath returns the predicted build output location of target name in
// package pkg.
func OutputPath(pkg, name string) string {
	return path.Join(m.OutputDir, pkg, name)
}

// PackagePattern returns the label pattern addressing every target of pkg.
func PackagePattern(pkg string) string {
	if pkg == "" {
		return "//:all"
	}

	return "//" + pkg + "/..."
}

// TreePattern is the label pattern addressing every target in a workspace.
const TreePattern = "//..."

package model

// Language is the source language inferred from a rule type.
type Language string

// Known language tags.
const (
	LanguageUnknown       Language = "unknown"
	LanguageNotApplicable Language = "n/a"

	LanguageCpp        Language = "cpp"
	LanguageC          Language = "c"
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
	LanguageKotlin     Language = "kotlin"
	LanguageScala      Language = "scala"
	LanguageRust       Language = "rust"
	LanguageShell      Language = "shell"
	LanguageProto      Language = "proto"
	LanguageTypeScript Language = "typescript"
	LanguageJavaScript Language = "javascript"
	LanguageSwift      Language = "swift"
	LanguageObjC       Language = "objc"
	LanguageCSharp     Language = "csharp"
	LanguageDocker     Language = "docker"
)

// Action is a user-facing operation a target qualifies for.
type Action string

// Supported actions, in display order.
const (
	ActionBuild Action = "build"
	ActionRun   Action = "run"
	ActionTest  Action = "test"
)

// AllActions lists every action in display order.
var AllActions = []Action{ActionBuild, ActionRun, ActionTest}

// ClassifiedTarget pairs a target with its classifications.
type ClassifiedTarget struct {
	Target   BuildTarget `yaml:"target"`
	Language Language    `yaml:"language"`
	Actions  []Action    `yaml:"actions"`
}

// Has reports whether the classification includes action.
func (c ClassifiedTarget) Has(action Action) bool {
	for _, a := range c.Actions {
		if a == action {
			return true
		}
	}

	return false
}

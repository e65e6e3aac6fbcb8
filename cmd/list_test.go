package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestListCmd_Table(t *testing.T) {
	root := chdirTemp(t)
	writeWorkspace(t, root)

	output, err := executeCommand(t, "list", root)
	require.NoError(t, err)

	assert.Contains(t, output, "//src:lib")
	assert.Contains(t, output, "//tools:gen")
	assert.Contains(t, output, "cc_library")
	assert.Contains(t, output, "TOTAL TARGETS 7")
}

func TestListCmd_YAML(t *testing.T) {
	root := chdirTemp(t)
	writeWorkspace(t, root)

	output, err := executeCommand(t, "list", "--format", "yaml", "--filter", "^cc_")
	require.NoError(t, err)

	var decoded struct {
		Targets []struct {
			Target struct {
				Label    string `yaml:"label"`
				RuleType string `yaml:"rule_type"`
			} `yaml:"target"`
			Language string   `yaml:"language"`
			Actions  []string `yaml:"actions"`
		} `yaml:"targets"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(output), &decoded))

	got := map[string]string{}
	for _, c := range decoded.Targets {
		got[c.Target.Label+" "+c.Target.RuleType] = c.Language
	}

	assert.Equal(t, "cpp", got["//src:lib cc_library"])
	assert.Equal(t, "cpp", got["//src:lib_test cc_test"])
	assert.NotContains(t, got, "//tools:gen sh_binary")
	assert.Contains(t, got, "//... aggregate:test")
}

func TestListCmd_InvalidFilter(t *testing.T) {
	chdirTemp(t)

	_, err := executeCommand(t, "list", "--filter", "(")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --filter pattern")
}

func TestListCmd_InvalidRoot(t *testing.T) {
	root := chdirTemp(t)

	_, err := executeCommand(t, "list", filepath.Join(root, "missing"))
	require.Error(t, err)
}

func TestListCmd_UnknownFormat(t *testing.T) {
	chdirTemp(t)

	_, err := executeCommand(t, "list", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestActionsCmd(t *testing.T) {
	root := chdirTemp(t)
	writeWorkspace(t, root)

	output, err := executeCommand(t, "actions", "--action", "run", root)
	require.NoError(t, err)

	assert.Contains(t, output, "RUN (2)")
	assert.Contains(t, output, "//tools:gen")
	assert.NotContains(t, output, "BUILD (")
}

func TestDiffCmd_AfterCachedList(t *testing.T) {
	root := chdirTemp(t)
	writeWorkspace(t, root)

	_, err := executeCommand(t, "list", "--cache", root)
	require.NoError(t, err)

	output, err := executeCommand(t, "diff", root)
	require.NoError(t, err)
	assert.Contains(t, output, "No target changes.")
}

func TestSelectAndStateCmds(t *testing.T) {
	root := chdirTemp(t)
	writeWorkspace(t, root)

	output, err := executeCommand(t, "select", "test", "//src:lib_test")
	require.NoError(t, err)
	assert.Contains(t, output, "Selected //src:lib_test for test.")

	output, err = executeCommand(t, "select", "test")
	require.NoError(t, err)
	assert.Contains(t, output, "test: //src:lib_test")

	_, err = executeCommand(t, "select", "run", "//src:lib")
	require.Error(t, err)

	output, err = executeCommand(t, "state", "clear")
	require.NoError(t, err)
	assert.Contains(t, output, "Cleared 1 state entries.")

	output, err = executeCommand(t, "select", "test")
	require.NoError(t, err)
	assert.Contains(t, output, "No target selected for test.")
}

package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "buildscout", configBaseName)
	assert.Equal(t, "buildscout.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "filter", filterFlagName)
	assert.Equal(t, "exclude", excludeFlagName)
	assert.Equal(t, "parallel", parallelFlagName)
	assert.Equal(t, "scan.rule_filter", ruleFilterKey)
	assert.Equal(t, "scan.batch_size", batchSizeKey)
	assert.Equal(t, "scan.parallel", parallelKey)
	assert.Equal(t, "scan.exclude", excludeConfigKey)
	assert.Equal(t, "output.format", outputFormatKey)
	assert.Equal(t, "state.file", stateFileKey)
	assert.Equal(t, ".buildscout-state.yaml", defaultStateFile)
	assert.Equal(t, "BUILDSCOUT", envPrefix)
	assert.Equal(t, []string{"bazel-*"}, defaultExclude)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo))
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	logPath := filepath.Join(t.TempDir(), "scan.log")

	verbose := configureLogger(logPath, true)
	require.NotNil(t, verbose)
	assert.True(t, verbose.Enabled(context.Background(), slog.LevelDebug))
	assert.Same(t, verbose, slog.Default())

	quiet := configureLogger(logPath, false)
	assert.False(t, quiet.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, quiet.Enabled(context.Background(), slog.LevelInfo))
}

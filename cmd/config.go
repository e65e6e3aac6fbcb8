package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"buildscout.dev/pkg/buildscout/internal/controller"
	"buildscout.dev/pkg/buildscout/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "buildscout"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	filterFlagName    = "filter"
	excludeFlagName   = "exclude"
	parallelFlagName  = "parallel"
	batchSizeFlagName = "batch-size"
	formatFlagName    = "format"
	verboseFlagName   = "verbose"

	ruleFilterKey     = "scan.rule_filter"
	batchSizeKey      = "scan.batch_size"
	parallelKey       = "scan.parallel"
	excludeConfigKey  = "scan.exclude"
	buildFilesKey     = "scan.build_files"
	workspaceFilesKey = "scan.workspace_files"
	outputFormatKey   = "output.format"
	stateFileKey      = "state.file"

	defaultRuleFilter = ""
	defaultParallel   = 0
	defaultFormat     = controller.FormatTable
	defaultStateFile  = ".buildscout-state.yaml"

	envPrefix = "BUILDSCOUT"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".buildscout.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// defaultExclude skips the output symlinks the build tool leaves in a
// workspace root.
var defaultExclude = []string{"bazel-*"}

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setConfigDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Debug("config file not loaded", "error", err)
		}
	}
}

func setConfigDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(ruleFilterKey, defaultRuleFilter)
	viper.SetDefault(batchSizeKey, domain.DefaultBatchSize)
	viper.SetDefault(parallelKey, defaultParallel)
	viper.SetDefault(excludeConfigKey, defaultExclude)
	viper.SetDefault(buildFilesKey, domain.DefaultBuildFileNames)
	viper.SetDefault(workspaceFilesKey, domain.DefaultWorkspaceFileNames)
	viper.SetDefault(outputFormatKey, defaultFormat)
	viper.SetDefault(stateFileKey, defaultStateFile)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger installs the global slog logger writing to a rotating
// file. Verbose forces Debug.
func configureLogger(logPath string, verbose bool) *slog.Logger {
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

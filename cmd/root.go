// Package cmd provides the root command and CLI setup for buildscout.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"buildscout.dev/pkg/buildscout/internal/adapter"
	"buildscout.dev/pkg/buildscout/internal/controller"
	"buildscout.dev/pkg/buildscout/internal/domain"
	m "buildscout.dev/pkg/buildscout/internal/model"
	"buildscout.dev/pkg/buildscout/pkg/statestore"
)

var fsAdapter adapter.SourceFSAdapter
var classifier *domain.Classifier

var ruleFilterFlag string
var excludePatterns []string
var parallelFlag int
var batchSizeFlag int
var formatFlag string
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	classifier = domain.NewClassifier(domain.DefaultLanguageTable)
}

const rootLongDescription = `buildscout discovers the build targets of a Bazel-style source tree.

It walks a directory, finds BUILD and workspace files, extracts the rule
declarations of every package and adds the aggregate targets
(//pkg/... and //...) a build tool accepts. Each target is classified by
language and by the actions (build, run, test) it supports.`

const rootArgHelp = `The optional root argument is the directory to scan (default: the current
directory).`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buildscout",
		Short: "Bazel build target discovery",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVarP(&ruleFilterFlag, filterFlagName, "f", viper.GetString(ruleFilterKey), "only extract rules whose type matches this regular expression")
	bindFlagToConfig(flags.Lookup(filterFlagName), ruleFilterKey)

	flags.StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "skip directories matching a glob pattern (can be repeated)")
	bindFlagToConfig(flags.Lookup(excludeFlagName), excludeConfigKey)

	flags.IntVarP(&parallelFlag, parallelFlagName, "p", viper.GetInt(parallelKey), "maximum build files processed at once (0 = no limit)")
	bindFlagToConfig(flags.Lookup(parallelFlagName), parallelKey)

	flags.IntVar(&batchSizeFlag, batchSizeFlagName, viper.GetInt(batchSizeKey), "directories listed concurrently per walk batch")
	bindFlagToConfig(flags.Lookup(batchSizeFlagName), batchSizeKey)

	flags.StringVar(&formatFlag, formatFlagName, viper.GetString(outputFormatKey), "output format: table, yaml or tui")
	bindFlagToConfig(flags.Lookup(formatFlagName), outputFormatKey)

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "write debug logs")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// newWorkflow assembles the scan pipeline from the current configuration.
func newWorkflow(cmd *cobra.Command, format string) (domain.Workflow, error) {
	ui, err := controller.NewUI(cmd, format, controller.IsTTY(os.Stdout))
	if err != nil {
		return nil, err
	}

	store, err := statestore.OpenFileStore(viper.GetString(stateFileKey), currentConfigVersion)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}

	workspaceFiles := viper.GetStringSlice(workspaceFilesKey)

	walker := domain.NewWorkspaceWalker(fsAdapter, domain.WalkOptions{
		BatchSize:          viper.GetInt(batchSizeKey),
		BuildFileNames:     viper.GetStringSlice(buildFilesKey),
		WorkspaceFileNames: workspaceFiles,
		Exclude:            viper.GetStringSlice(excludeConfigKey),
	})

	return domain.NewWorkflow(
		fsAdapter,
		ui,
		domain.NewScanner(fsAdapter, walker),
		classifier,
		store,
		workspaceFiles,
	), nil
}

// scanArgs builds the scan arguments for root from the current configuration.
func scanArgs(root m.Path) (domain.ScanArgs, error) {
	args := domain.ScanArgs{
		Root:     root,
		Parallel: viper.GetInt(parallelKey),
	}

	if pattern := viper.GetString(ruleFilterKey); pattern != "" {
		filter, err := regexp.Compile(pattern)
		if err != nil {
			return domain.ScanArgs{}, fmt.Errorf("invalid --%s pattern: %w", filterFlagName, err)
		}

		args.RuleFilter = filter
	}

	return args, nil
}

// parseRoot returns the scan root named by the first argument, or the
// current directory.
func parseRoot(args []string) m.Path {
	if len(args) == 0 || args[0] == "" {
		return "."
	}

	return m.Path(args[0])
}

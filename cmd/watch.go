package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"buildscout.dev/pkg/buildscout/internal/adapter"
	"buildscout.dev/pkg/buildscout/internal/controller"
	"buildscout.dev/pkg/buildscout/internal/domain"
)

// watchCmd represents the watch command.
var watchCmd = newWatchCmd()

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [root]",
		Short: "Re-scan whenever a build file changes",
		Long: `List the targets, then watch the package directories for changes to build
and workspace files. Every change triggers a new scan and prints the
difference to the previous one. Stop with Ctrl+C.

` + rootArgHelp,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scan, err := scanArgs(parseRoot(args))
			if err != nil {
				return err
			}

			workflow, err := newWorkflow(cmd, nonInteractiveFormat(viper.GetString(outputFormatKey)))
			if err != nil {
				return err
			}

			names := append(viper.GetStringSlice(buildFilesKey), viper.GetStringSlice(workspaceFilesKey)...)

			watcher, err := adapter.NewBuildFileWatcher(names, adapter.DefaultDebounce)
			if err != nil {
				return err
			}

			defer func() {
				if err := watcher.Close(); err != nil {
					slog.Warn("Failed to close watcher", "error", err)
				}
			}()

			return workflow.Watch(cmd.Context(), domain.WatchArgs{
				ScanArgs: scan,
				Watcher:  watcher,
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// nonInteractiveFormat maps the TUI format to the table for commands that
// print incremental output.
func nonInteractiveFormat(format string) string {
	if format == controller.FormatTUI || format == "" {
		return controller.FormatTable
	}

	return format
}

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"buildscout.dev/pkg/buildscout/internal/domain"
	m "buildscout.dev/pkg/buildscout/internal/model"
)

var selectRootFlag string

// selectCmd represents the select command.
var selectCmd = newSelectCmd()

func newSelectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select <action> [label]",
		Short: "Remember a target for an action",
		Long: `Store the target to use for an action (build, run or test). The label must
name a target that supports the action. Without a label the current
selection is shown.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scan, err := scanArgs(m.Path(selectRootFlag))
			if err != nil {
				return err
			}

			workflow, err := newWorkflow(cmd, nonInteractiveFormat(viper.GetString(outputFormatKey)))
			if err != nil {
				return err
			}

			selectArgs := domain.SelectArgs{
				ScanArgs: scan,
				Action:   m.Action(args[0]),
			}
			if len(args) > 1 {
				selectArgs.Label = args[1]
			}

			return workflow.Select(cmd.Context(), selectArgs)
		},
	}

	cmd.Flags().StringVarP(&selectRootFlag, "root", "C", ".", "directory to scan for the label")

	return cmd
}

func init() {
	rootCmd.AddCommand(selectCmd)
}

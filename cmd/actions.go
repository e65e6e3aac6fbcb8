package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"buildscout.dev/pkg/buildscout/internal/domain"
	m "buildscout.dev/pkg/buildscout/internal/model"
)

var actionFlag string

// actionsCmd represents the actions command.
var actionsCmd = newActionsCmd()

func newActionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions [root]",
		Short: "Group build targets by supported action",
		Long: `Group the discovered targets by the actions they support: build, run and
test. A target appears under every action it supports.

` + rootArgHelp,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scan, err := scanArgs(parseRoot(args))
			if err != nil {
				return err
			}

			workflow, err := newWorkflow(cmd, viper.GetString(outputFormatKey))
			if err != nil {
				return err
			}

			return workflow.Actions(cmd.Context(), domain.ActionsArgs{
				ScanArgs: scan,
				Action:   m.Action(actionFlag),
			})
		},
	}

	cmd.Flags().StringVarP(&actionFlag, "action", "a", "", "only show targets for this action (build, run or test)")

	return cmd
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// stateCmd represents the state command.
var stateCmd = newStateCmd()

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Manage cached scans and selections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached scan and selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workflow, err := newWorkflow(cmd, nonInteractiveFormat(viper.GetString(outputFormatKey)))
			if err != nil {
				return err
			}

			return workflow.ClearState(cmd.Context())
		},
	})

	return cmd
}

func init() {
	rootCmd.AddCommand(stateCmd)
}

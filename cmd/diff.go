package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"buildscout.dev/pkg/buildscout/internal/domain"
)

var diffUpdateFlag bool

// diffCmd represents the diff command.
var diffCmd = newDiffCmd()

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [root]",
		Short: "Compare a fresh scan with the cached one",
		Long: `Scan the root again and print a unified diff against the result cached by
"list --cache". Each line is a target label followed by its rule type.

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

			return workflow.Diff(cmd.Context(), domain.DiffArgs{
				ScanArgs: scan,
				Update:   diffUpdateFlag,
			})
		},
	}

	cmd.Flags().BoolVar(&diffUpdateFlag, "update", false, "replace the cached scan with the fresh one")

	return cmd
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

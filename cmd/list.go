package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"buildscout.dev/pkg/buildscout/internal/domain"
)

var listCacheFlag bool

const listLongDescription = `List every build target found under the root, including the package and
tree-wide aggregates, with its rule type, language and supported actions.

` + rootArgHelp

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [root]",
		Short: "List discovered build targets",
		Long:  listLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scan, err := scanArgs(parseRoot(args))
			if err != nil {
				return err
			}

			workflow, err := newWorkflow(cmd, viper.GetString(outputFormatKey))
			if err != nil {
				return err
			}

			return workflow.List(cmd.Context(), domain.ListArgs{
				ScanArgs: scan,
				Cache:    listCacheFlag,
			})
		},
	}

	cmd.Flags().BoolVar(&listCacheFlag, "cache", false, "store the result for a later diff")

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}

package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the module version, VCS revision and Go version of this buildscout binary.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok {
				cmd.Println("buildscout version: unknown")
				return
			}

			version := info.Main.Version
			if version == "" {
				version = "(devel)"
			}

			cmd.Println("buildscout version\t", version)
			cmd.Println("go version\t", info.GoVersion)

			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs.revision":
					cmd.Println("revision\t", setting.Value)
				case "vcs.modified":
					if setting.Value == "true" {
						cmd.Println("modified\t", setting.Value)
					}
				}
			}
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}

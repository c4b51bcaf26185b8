package main

import (
	"fmt"

	"github.com/jingkaihe/skillsync/pkg/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version information of skillsync in JSON format, or as one line with --short.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Println(info.String())
			return nil
		}

		out, err := info.JSON()
		if err != nil {
			return errors.Wrap(err, "failed to format version info")
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print a single line instead of JSON")
	rootCmd.AddCommand(versionCmd)
}

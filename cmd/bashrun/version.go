package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LiboWorks/bashrun/pkg/bashrun"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bashrun version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bashrun %s\n", bashrun.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd prints the version set at build time.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of specprobe",
		Long:  `Print the specprobe version set at build time.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "specprobe version %s\n", rootCmd.Version)
		},
	}
}

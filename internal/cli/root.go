// Package cli implements the reqsmith command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reqsmith",
	Short: "ReqSmith - requirement extraction from heterogeneous documents",
	Long: `ReqSmith extracts structured software requirements from PDF, Word,
spreadsheet, image, email and dependency-graph documents.

Fields the source document does not state are filled from configured
knowledge sources where possible; fields that cannot be resolved are
marked unresolved rather than guessed.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("reqsmith v0.3.0")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.AddCommand(versionCmd)
}

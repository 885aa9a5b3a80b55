package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Enginex0/nomount-vfs/pkg/rule"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <path>...",
	Short: "Print the classification of each virtual path",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	w, flush := newTable(cmd.OutOrStdout())
	for _, p := range args {
		fmt.Fprintf(w, "%s\t%s\n", rule.Classify(p), p)
	}
	return flush()
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Enginex0/nomount-vfs/pkg/rule"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the mode and rule set the companion would serve",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	mode, rules := newRuleSource().Load()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "mode: %s\n", mode)
	return printRules(cmd, rules)
}

func printRules(cmd *cobra.Command, rules []rule.Rule) error {
	w, flush := newTable(cmd.OutOrStdout())
	fmt.Fprintln(w, "CLASS\tMAPS\tVIRTUAL\tREAL")
	for _, r := range rules {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Classification, yesNo(r.HideFromMaps), r.VirtualPath, r.RealPath)
	}
	return flush()
}

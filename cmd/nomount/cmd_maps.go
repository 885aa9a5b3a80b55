package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Enginex0/nomount-vfs/internal/errx"
	"github.com/Enginex0/nomount-vfs/pkg/procmaps"
	"github.com/Enginex0/nomount-vfs/pkg/rule"
)

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "List a process's mappings that the current hide-set would conceal",
	Args:  cobra.NoArgs,
	RunE:  runMaps,
}

func init() {
	mapsCmd.Flags().Int("pid", 0, "Process to inspect (default: this process)")
	viper.BindPFlag("maps.pid", mapsCmd.Flags().Lookup("pid"))

	rootCmd.AddCommand(mapsCmd)
}

func runMaps(cmd *cobra.Command, args []string) error {
	pid := viper.GetInt("maps.pid")
	if pid <= 0 {
		pid = os.Getpid()
	}

	entries, err := procmaps.ReadPID(pid)
	if err != nil {
		return errx.With(ErrReadMaps, " pid %d: %w", pid, err)
	}

	_, rules := newRuleSource().Load()
	matches := concealTargets(entries, rules)

	w, flush := newTable(cmd.OutOrStdout())
	fmt.Fprintln(w, "RANGE\tPERMS\tPATH")
	for _, e := range matches {
		fmt.Fprintf(w, "%x-%x\t%s\t%s\n", e.Start, e.End, e.Perms, e.Path)
	}
	if err := flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d mappings would be concealed in pid %d\n", len(matches), len(entries), pid)
	return nil
}

// concealTargets mirrors the engine's selection: the hide-set already carries
// the install root through the default patterns.
func concealTargets(entries []procmaps.Entry, rules []rule.Rule) []procmaps.Entry {
	return procmaps.Match(entries, rule.HideSet(rules))
}

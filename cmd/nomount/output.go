package main

import (
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/term"
)

// newTable aligns columns for a terminal and leaves plain tab-separated rows
// for pipes.
func newTable(out io.Writer) (io.Writer, func() error) {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		return tw, tw.Flush
	}
	return out, func() error { return nil }
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Enginex0/nomount-vfs/internal/errx"
	"github.com/Enginex0/nomount-vfs/pkg/ledger"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent sessions served by the companion",
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().Int("limit", 20, "Number of sessions to show")
	viper.BindPFlag("sessions.limit", sessionsCmd.Flags().Lookup("limit"))

	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	l, err := ledger.Open(ledgerPath())
	if err != nil {
		return errx.Wrap(ErrOpenLedger, err)
	}
	defer l.Close()

	sessions, err := l.Recent(cmd.Context(), viper.GetInt("sessions.limit"))
	if err != nil {
		return errx.Wrap(ErrListLedger, err)
	}

	w, flush := newTable(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tSERVED\tPID\tUID\tMODE\tRULES\tERROR")
	for _, s := range sessions {
		errText := "-"
		if s.Err != "" {
			errText = s.Err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%d\t%s\n",
			s.ID, s.Time.Local().Format(time.DateTime), s.PeerPID, s.PeerUID, s.Mode, s.Rules, errText)
	}
	return flush()
}

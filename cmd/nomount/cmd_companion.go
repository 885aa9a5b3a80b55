package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Enginex0/nomount-vfs/internal/errx"
	"github.com/Enginex0/nomount-vfs/pkg/companion"
	"github.com/Enginex0/nomount-vfs/pkg/ledger"
)

var companionCmd = &cobra.Command{
	Use:   "companion",
	Short: "Serve the rule set to module instances until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runCompanion,
}

func init() {
	companionCmd.Flags().Bool("no-ledger", false, "Do not record served sessions")
	viper.BindPFlag("companion.no_ledger", companionCmd.Flags().Lookup("no-ledger"))

	rootCmd.AddCommand(companionCmd)
}

func runCompanion(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src := newRuleSource()
	opts := []companion.ServerOption{}
	if !viper.GetBool("companion.no_ledger") {
		l, err := ledger.Open(ledgerPath())
		if err != nil {
			slog.Warn("companion: session ledger disabled", "error", err)
		} else {
			defer l.Close()
			opts = append(opts, companion.WithRecorder(l))
		}
	}

	srv := companion.NewServer(companion.New(src.Load), opts...)
	if err := srv.Start(viper.GetString("socket")); err != nil {
		return errx.Wrap(ErrStartCompanion, err)
	}
	defer srv.Stop()

	<-ctx.Done()
	slog.Info("companion: shutting down")
	return nil
}

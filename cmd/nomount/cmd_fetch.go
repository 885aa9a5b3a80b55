package main

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Enginex0/nomount-vfs/internal/errx"
	"github.com/Enginex0/nomount-vfs/pkg/wire"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Connect to the companion as a client and print what it sends",
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 5*time.Second, "Dial and read timeout")
	viper.BindPFlag("fetch.timeout", fetchCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	socket := viper.GetString("socket")
	timeout := viper.GetDuration("fetch.timeout")

	conn, err := net.DialTimeout("unix", socket, timeout)
	if err != nil {
		return errx.With(ErrDial, " %s: %w", socket, err)
	}
	defer conn.Close()
	if timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
	}

	mode, rules, err := wire.ReadRuleSet(conn)
	if err != nil {
		return errx.Wrap(ErrFetchRules, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "mode: %s\nrules: %d\n", mode, len(rules))
	return printRules(cmd, rules)
}

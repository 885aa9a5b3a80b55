package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Enginex0/nomount-vfs/internal/errx"
	"github.com/Enginex0/nomount-vfs/pkg/companion"
	"github.com/Enginex0/nomount-vfs/pkg/rulesource"
)

const ledgerFile = "companion.db"

var rootCmd = &cobra.Command{
	Use:           "nomount",
	Short:         "Rule companion and map concealment toolkit",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd.ErrOrStderr())
	},
}

func init() {
	viper.SetEnvPrefix("NOMOUNT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("data-dir", rulesource.DefaultDataDir, "Directory holding config.sh, rules.conf and the session ledger")
	pf.String("modules-root", rulesource.DefaultModulesRoot, "Directory of installed modules")
	pf.String("fonts-dir", rulesource.DefaultFontsDir, "System fonts directory")
	pf.String("socket", companion.DefaultSocketPath, "Companion socket path")

	viper.BindPFlag("log_level", pf.Lookup("log-level"))
	viper.BindPFlag("data_dir", pf.Lookup("data-dir"))
	viper.BindPFlag("modules_root", pf.Lookup("modules-root"))
	viper.BindPFlag("fonts_dir", pf.Lookup("fonts-dir"))
	viper.BindPFlag("socket", pf.Lookup("socket"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log_level"))); err != nil {
		return errx.With(ErrLogLevel, " %q", viper.GetString("log_level"))
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}

func newRuleSource() *rulesource.Source {
	return rulesource.New(
		rulesource.WithDataDir(viper.GetString("data_dir")),
		rulesource.WithModulesRoot(viper.GetString("modules_root")),
		rulesource.WithFontsDir(viper.GetString("fonts_dir")),
	)
}

func ledgerPath() string {
	return filepath.Join(viper.GetString("data_dir"), ledgerFile)
}

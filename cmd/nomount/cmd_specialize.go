package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Enginex0/nomount-vfs/pkg/module"
)

var specializeCmd = &cobra.Command{
	Use:   "specialize",
	Short: "Run the module lifecycle against the companion in this process",
	Long: `Runs the full client pipeline in this process: fetch the rule set,
warm the page cache for overlaid fonts, conceal matching mappings of this
process, then report the outcome.`,
	Args: cobra.NoArgs,
	RunE: runSpecialize,
}

func init() {
	specializeCmd.Flags().String("nice-name", "nomount", "Process name reported to the controller")
	specializeCmd.Flags().Bool("system-server", false, "Take the system server path (no work)")
	specializeCmd.Flags().Duration("timeout", 5*time.Second, "Companion dial and read timeout")
	viper.BindPFlag("specialize.nice_name", specializeCmd.Flags().Lookup("nice-name"))
	viper.BindPFlag("specialize.system_server", specializeCmd.Flags().Lookup("system-server"))
	viper.BindPFlag("specialize.timeout", specializeCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(specializeCmd)
}

func runSpecialize(cmd *cobra.Command, args []string) error {
	host := &module.SocketHost{
		SocketPath: viper.GetString("socket"),
		Timeout:    viper.GetDuration("specialize.timeout"),
	}
	ctrl := module.NewController(
		module.WithFontCacheLookup(module.PageCacheLookup),
	)

	ctrl.OnLoad(host)
	if viper.GetBool("specialize.system_server") {
		ctrl.PreServerSpecialize(&module.ServerSpecializeArgs{})
	} else {
		ctrl.PreAppSpecialize(&module.AppSpecializeArgs{NiceName: viper.GetString("specialize.nice_name")})
	}

	res := ctrl.Result()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "state: %s\n", res.State)
	fmt.Fprintf(out, "connected: %s\n", yesNo(res.Connected))
	if res.Connected {
		fmt.Fprintf(out, "mode: %s\nrules: %d\n", res.Mode, res.Rules)
		fmt.Fprintf(out, "fonts: preloaded=%d skipped=%d\n", res.FontsPreloaded, res.FontsSkipped)
	}
	if r := res.Concealment; r != nil {
		fmt.Fprintf(out, "maps: scanned=%d hidden=%d failed=%d\n", r.Scanned, r.Hidden, r.Failed)
		if r.Err != nil {
			fmt.Fprintf(out, "maps error: %v\n", r.Err)
		}
		w, flush := newTable(out)
		for _, t := range r.Targets {
			status := "hidden"
			if !t.Hidden {
				status = fmt.Sprintf("failed: %v", t.Err)
			}
			fmt.Fprintf(w, "%x-%x\t%s\t%s\t%s\n", t.Start, t.End, t.Perms, t.Path, status)
		}
		if err := flush(); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "options: %v\n", host.Options())
	return nil
}

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"firestige.xyz/modbusdump/internal/log"
	"firestige.xyz/modbusdump/internal/source"
)

var readCmd = &cobra.Command{
	Use:   "read <FILE>",
	Short: "Decode frames from a pcap file",
	Long: `
Decode every frame of a pcap capture file the same way a live capture does.
The BPF filter applies to the file too.

Examples:
  modbusdump read plant.pcap
  modbusdump read plant.pcap --filter "tcp port 502" --format yaml
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer log.Close()

		path := args[0]
		src, err := source.OpenFile(path, cfg.Capture.Filter)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer src.Close()

		return capture(cmd.Context(), cfg, src, filepath.Base(path), cmd.OutOrStdout())
	},
}

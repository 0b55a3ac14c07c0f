// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"firestige.xyz/modbusdump/internal/config"
	"firestige.xyz/modbusdump/internal/core/decoder"
	"firestige.xyz/modbusdump/internal/log"
	"firestige.xyz/modbusdump/internal/metrics"
	"firestige.xyz/modbusdump/internal/modbus"
	"firestige.xyz/modbusdump/internal/pipeline"
	"firestige.xyz/modbusdump/internal/report"
	"firestige.xyz/modbusdump/internal/source"
)

var (
	// Global flags
	configFile string
)

// rootCmd captures on the interface named by its single argument.
var rootCmd = &cobra.Command{
	Use:   "modbusdump <NETWORK INTERFACE>",
	Short: "modbusdump - passive Modbus/TCP sniffer",
	Long: `modbusdump captures frames on a network interface and prints every frame
it sees, decoding Ethernet, ARP, IPv4/IPv6, TCP, UDP, ICMP and, for TCP
segments to or from the Modbus port, the Modbus/TCP message.

Examples:
  modbusdump eth0                              # text output on stdout
  modbusdump eth0 --format json -o frames.log  # JSON lines into a rotated file
  modbusdump eth0 --filter "tcp port 502"      # only Modbus traffic
  modbusdump read capture.pcap                 # decode a capture file`,
	Version:       "0.1.0",
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	RunE:          runLive,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file path (YAML)")

	pf.StringP("filter", "f", "", "BPF filter expression")
	pf.Int("snaplen", 65535, "bytes captured per frame")
	pf.Bool("promiscuous", true, "put the interface into promiscuous mode")
	pf.Duration("timeout", 500*time.Millisecond, "capture read timeout, 0 blocks until a frame arrives")
	pf.String("engine", source.EnginePcap, "capture engine: pcap or afpacket")
	pf.Int("buffer-size", 8, "afpacket ring size in MB")
	pf.Int("link-offset", -1, "IP header offset on links without Ethernet, -1 derives it")
	pf.IntP("count", "n", 0, "stop after this many frames, 0 is unlimited")
	pf.Uint16P("port", "p", modbus.DefaultPort, "Modbus/TCP server port")
	pf.String("format", report.FormatText, "output format: text, json or yaml")
	pf.StringP("output", "o", "", "write decoded frames to a rotated file instead of stdout")
	pf.String("log-level", "info", "log level")
	pf.String("log-format", log.FormatPrefixed, "log format: prefixed, pattern or json")
	pf.Bool("metrics", false, "serve Prometheus metrics")
	pf.String("metrics-addr", ":9502", "metrics listen address")

	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(interfacesCmd)
}

func runLive(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	device := args[0]
	src, err := source.OpenLive(cfg.Capture.Source(device))
	if err != nil {
		return fmt.Errorf("open %s: %w", device, err)
	}
	defer src.Close()

	return capture(cmd.Context(), cfg, src, device, cmd.OutOrStdout())
}

// loadConfig merges the config file, environment and flags of cmd and
// initializes logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := log.Init(&cfg.Log); err != nil {
		return nil, fmt.Errorf("init log: %w", err)
	}
	return cfg, nil
}

// capture runs the decode loop over src until it is exhausted, ctx is done
// or a capture error occurs.
func capture(ctx context.Context, cfg *config.Config, src source.Source, name string, stdout io.Writer) error {
	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := srv.Stop(context.Background()); err != nil {
				log.GetLogger().WithError(err).Warn("stop metrics server")
			}
		}()
	}

	out := report.NewWriter(cfg.Output.File, stdout)
	defer out.Close()

	reporter, err := report.New(cfg.Output.Format, out, name)
	if err != nil {
		return err
	}

	p := pipeline.New(pipeline.Config{
		Name:   name,
		Source: src,
		Decoder: decoder.NewStandardDecoder(decoder.Config{
			Parsers: []decoder.AppParser{modbus.NewParser(cfg.Modbus.Port)},
		}),
		Reporter:   reporter,
		LinkOffset: cfg.Capture.LinkOffset,
		Count:      cfg.Capture.Count,
	})
	return p.Run(ctx)
}

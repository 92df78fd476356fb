// Package cli implements the lsserial command.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"serial-discovery/internal/config"
	"serial-discovery/internal/discovery/serial"
	"serial-discovery/internal/model"
	"serial-discovery/internal/utils"
)

// ScannerFactory builds the scanner used by the command
type ScannerFactory func(logger *zap.Logger, cfg *serial.Config) *serial.Scanner

type options struct {
	configFile string
	jsonOutput bool
	identify   bool
	timeout    time.Duration
	byPathDir  string
	udevadm    string
	verbose    bool
}

// NewRootCommand creates the lsserial command. A nil factory uses
// serial.NewScanner.
func NewRootCommand(factory ScannerFactory) *cobra.Command {
	if factory == nil {
		factory = serial.NewScanner
	}

	opts := &options{}
	cmd := &cobra.Command{
		Use:   "lsserial",
		Short: "List serial ports known to udev",
		Long: `List the serial ports that are currently active on this host.

Ports are read from "udevadm info -e" and kept only when they have a
link under /dev/serial/by-path.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, factory)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "path to config file")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print ports as JSON")
	flags.BoolVarP(&opts.identify, "identify", "i", false, "identify the adapter chip of each port")
	flags.DurationVarP(&opts.timeout, "timeout", "t", 0, "enumeration timeout (default from config)")
	flags.StringVar(&opts.byPathDir, "by-path", "", "directory of by-path links (default from config)")
	flags.StringVar(&opts.udevadm, "udevadm", "", "udevadm binary (default from config)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log enumeration details to stderr")

	return cmd
}

func run(cmd *cobra.Command, opts *options, factory ScannerFactory) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zap.NewNop()
	if opts.verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
		cfg.Logging.Output = "stderr"
		if logger, err = utils.NewLogger(&cfg.Logging); err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer utils.CloseLogger(logger)
	}

	scannerConfig := &serial.Config{
		UdevadmPath:  cfg.Discovery.UdevadmPath,
		UdevadmArgs:  cfg.Discovery.UdevadmArgs,
		ByPathDir:    cfg.Discovery.ByPathDir,
		ScanTimeout:  cfg.Discovery.ScanTimeout,
		PortPatterns: cfg.Discovery.PortPatterns,
	}
	if opts.timeout > 0 {
		scannerConfig.ScanTimeout = opts.timeout
	}
	if opts.byPathDir != "" {
		scannerConfig.ByPathDir = opts.byPathDir
	}
	if opts.udevadm != "" {
		scannerConfig.UdevadmPath = opts.udevadm
	}

	scanner := factory(logger, scannerConfig)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()

	if opts.identify {
		devices, err := scanner.Scan(ctx)
		if err != nil {
			return err
		}
		if opts.jsonOutput {
			return writeJSON(out, devices)
		}
		return writeDeviceTable(out, devices)
	}

	ports, err := scanner.ListPorts(ctx)
	if err != nil {
		return err
	}
	if opts.jsonOutput {
		return writeJSON(out, ports)
	}
	return writePortTable(out, ports)
}

func writeJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writePortTable(out io.Writer, ports []model.PortInfo) error {
	if len(ports) == 0 {
		fmt.Fprintln(out, "No serial ports found")
		return nil
	}

	rows := make([][]string, 0, len(ports))
	for _, p := range ports {
		rows = append(rows, []string{
			p.Path, usbID(p.VendorID, p.ProductID), dash(p.Manufacturer), dash(p.SerialNumber), dash(p.PnpID),
		})
	}
	return writeTable(out, []string{"PATH", "VID:PID", "MANUFACTURER", "SERIAL", "PNP ID"}, rows)
}

func writeDeviceTable(out io.Writer, devices []*model.DiscoveredDevice) error {
	if len(devices) == 0 {
		fmt.Fprintln(out, "No serial ports found")
		return nil
	}

	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		path := ""
		if d.Port != nil {
			path = d.Port.Path
		}
		rows = append(rows, []string{
			path, string(d.Brand), dash(d.Model), fmt.Sprintf("%.2f", d.Confidence), dash(d.SerialNumber),
		})
	}
	return writeTable(out, []string{"PATH", "BRAND", "MODEL", "CONFIDENCE", "SERIAL"}, rows)
}

// writeTable aligns columns first so the colored header does not skew
// the tabwriter widths
func writeTable(out io.Writer, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	lines := strings.SplitAfterN(buf.String(), "\n", 2)
	if _, err := color.New(color.Bold).Fprint(out, lines[0]); err != nil {
		return err
	}
	if len(lines) > 1 {
		_, err := io.WriteString(out, lines[1])
		return err
	}
	return nil
}

func usbID(vendorID, productID string) string {
	if vendorID == "" && productID == "" {
		return "-"
	}
	return dash(vendorID) + ":" + dash(productID)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

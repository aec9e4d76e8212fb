package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hexlayout/internal/logger"
	"github.com/joshuapare/hexlayout/layout"
	"github.com/joshuapare/hexlayout/layout/printer"
	"github.com/joshuapare/hexlayout/layout/view"
)

var (
	regionsMode     string
	regionsDisplay  string
	regionsShowReal bool
	regionsMaxBytes int
)

func init() {
	cmd := newRegionsCmd()
	cmd.Flags().StringVar(&regionsMode, "mode", "", "Inline comment mode (hidden, full-indent, short-indent, full, short)")
	cmd.Flags().StringVar(&regionsDisplay, "display", "", "Display mode (file, virtual)")
	cmd.Flags().BoolVar(&regionsShowReal, "show-real", false, "Show real offsets next to virtual ones")
	cmd.Flags().IntVar(&regionsMaxBytes, "max-bytes", -1, "Maximum raw bytes shown per region (0 = unlimited)")
	rootCmd.AddCommand(cmd)
}

func newRegionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions <data-file> [snapshot]",
		Short: "Print the compiled region layout",
		Long: `The regions command compiles the layout of a data file and prints one
line per region: comment markers, typed blocks with decoded values, raw
bytes and sub-byte bit blocks. Data under an indented comment is nested
beneath it.

Example:
  hexlayout regions firmware.bin notes.yaml
  hexlayout regions firmware.bin notes.yaml --mode short --display virtual
  hexlayout regions firmware.bin notes.jsonc --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegions(args)
		},
	}
	return cmd
}

// layoutModes resolves the compile modes from the flags, falling back to
// the config.
func layoutModes(modeFlag, displayFlag string) (layout.InlineCommentMode, layout.DisplayMode, error) {
	mode, err := cfg.InlineMode()
	if modeFlag != "" {
		mode, err = layout.ParseInlineCommentMode(modeFlag)
	}
	if err != nil {
		return mode, layout.FileView, err
	}

	display, err := cfg.DisplayMode()
	if displayFlag != "" {
		display, err = layout.ParseDisplayMode(displayFlag)
	}
	return mode, display, err
}

func runRegions(args []string) error {
	mode, display, err := layoutModes(regionsMode, regionsDisplay)
	if err != nil {
		return err
	}

	doc, f, err := openDocument(args[0], snapshotArg(args))
	if err != nil {
		return err
	}
	defer f.Close()

	opts := cfg.PrinterOptions()
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	if regionsShowReal {
		opts.ShowReal = true
	}
	if regionsMaxBytes >= 0 {
		opts.MaxValueBytes = regionsMaxBytes
	}
	p := printer.New(os.Stdout, doc.Data(), opts)

	var printErr error
	v := view.New(doc, view.SinkFunc(func(regions []layout.Region) {
		printErr = p.Print(regions)
	}), view.Options{
		Logger:     logger.L,
		InlineMode: mode,
		Display:    display,
	})
	v.Repopulate()

	return printErr
}

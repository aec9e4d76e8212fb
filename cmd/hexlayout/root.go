package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hexlayout/internal/config"
	"github.com/joshuapare/hexlayout/internal/logger"
	"github.com/joshuapare/hexlayout/internal/mmfile"
	"github.com/joshuapare/hexlayout/internal/snapshot"
	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/document"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string

	// cfg holds the loaded configuration; flags override it per command.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "hexlayout",
	Short: "Compile and inspect annotated binary file layouts",
	Long: `hexlayout compiles a data file and its annotations (comments, type
assignments and virtual segments) into the ordered region list a hex editor
displays, and checks that layout against its structural invariants.

Annotations are read from a snapshot file in YAML or JSONC.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
}

// setup loads the config file and initializes logging.
func setup() error {
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}

	logger.Init(logger.Options{
		Enabled: true,
		Output:  os.Stderr,
		Level:   level,
		JSON:    cfg.Log.JSON,
	})
	return nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// openDocument maps the data file and applies the optional snapshot. The
// returned file must be closed once the document is no longer used.
func openDocument(dataPath, snapshotPath string) (*document.Document, *mmfile.File, error) {
	logger.Debug("opening data file", "path", dataPath)
	f, err := mmfile.Open(dataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open data file: %w", err)
	}

	if snapshotPath == "" {
		return document.FromBytes(f.Bytes()), f, nil
	}

	logger.Debug("loading snapshot", "path", snapshotPath)
	snap, err := snapshot.Load(snapshotPath)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	doc, err := snap.Document(bitoff.Zero, f.Bytes())
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%s: %w", snapshotPath, err)
	}

	logger.Debug("document ready",
		"length", doc.BufferLength().String(),
		"comments", doc.Comments().Len(),
		"type_entries", doc.TypeMap().Len(),
		"segments", doc.Segments().Len())
	return doc, f, nil
}

// snapshotArg returns the optional second positional argument.
func snapshotArg(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return ""
}

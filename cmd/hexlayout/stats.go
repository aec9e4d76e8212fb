package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hexlayout/layout"
	"github.com/joshuapare/hexlayout/layout/verify"
)

var (
	statsMode    string
	statsDisplay string
)

func init() {
	cmd := newStatsCmd()
	cmd.Flags().StringVar(&statsMode, "mode", "", "Inline comment mode (hidden, full-indent, short-indent, full, short)")
	cmd.Flags().StringVar(&statsDisplay, "display", "", "Display mode (file, virtual)")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <data-file> [snapshot]",
		Short: "Show layout statistics",
		Long: `The stats command compiles the layout of a data file and summarizes it:
region counts by kind, bytes covered per data type, comment nesting depth,
compile time and the layout fingerprint.

Example:
  hexlayout stats firmware.bin notes.yaml
  hexlayout stats firmware.bin notes.yaml --display virtual --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

type LayoutStats struct {
	File     string `json:"file"`
	Length   string `json:"length"`
	Display  string `json:"display"`
	Mode     string `json:"mode"`
	Comments int    `json:"comments"`
	Segments int    `json:"segments"`

	Regions       int              `json:"regions"`
	RegionsByKind map[string]int   `json:"regions_by_kind"`
	BitsByType    map[string]int64 `json:"bits_by_type"`
	MaxNesting    int              `json:"max_nesting"`

	CompileTime time.Duration `json:"compile_time_ns"`
	Fingerprint string        `json:"fingerprint"`
}

// collectStats summarizes a compiled layout.
func collectStats(regions []layout.Region, stats *LayoutStats) {
	stats.Regions = len(regions)

	var open []int64
	for _, r := range regions {
		stats.RegionsByKind[r.Kind.String()]++

		pos := r.VirtOffset.TotalBits()
		if r.Kind == layout.KindComment {
			pos = r.IndentOffset.TotalBits()
		}
		for len(open) > 0 && open[len(open)-1] <= pos {
			open = open[:len(open)-1]
		}

		switch r.Kind {
		case layout.KindTyped:
			stats.BitsByType[r.TypeName] += r.Length.TotalBits()
		case layout.KindRaw, layout.KindBits:
			stats.BitsByType["(untyped)"] += r.Length.TotalBits()
		}

		if r.Nests() {
			open = append(open, r.IndentOffset.Add(r.IndentLength).TotalBits())
			if len(open) > stats.MaxNesting {
				stats.MaxNesting = len(open)
			}
		}
	}
}

func runStats(args []string) error {
	dataPath := args[0]

	mode, display, err := layoutModes(statsMode, statsDisplay)
	if err != nil {
		return err
	}

	printVerbose("Opening data file: %s\n", dataPath)

	doc, f, err := openDocument(dataPath, snapshotArg(args))
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	regions := layout.Orchestrate(doc, doc.Segments(), display, mode)
	elapsed := time.Since(start)

	stats := LayoutStats{
		File:          dataPath,
		Length:        doc.BufferLength().String(),
		Display:       display.String(),
		Mode:          mode.String(),
		Comments:      doc.Comments().Len(),
		Segments:      doc.Segments().Len(),
		RegionsByKind: make(map[string]int),
		BitsByType:    make(map[string]int64),
		CompileTime:   elapsed,
		Fingerprint:   verify.Fingerprint(regions),
	}
	collectStats(regions, &stats)

	// Output as JSON if requested
	if jsonOut {
		return printJSON(stats)
	}

	// Text output
	printInfo("\nLayout Statistics: %s\n", dataPath)
	printInfo("%s\n\n", strings.Repeat("═", 40))

	printInfo("Document:\n")
	printInfo("  Length: %s bytes\n", stats.Length)
	printInfo("  Comments: %s\n", formatNumber(int64(stats.Comments)))
	printInfo("  Virtual segments: %d\n\n", stats.Segments)

	printInfo("Layout (%s, %s):\n", stats.Display, stats.Mode)
	printInfo("  Total regions: %s\n", formatNumber(int64(stats.Regions)))
	for _, kind := range []layout.Kind{layout.KindComment, layout.KindTyped, layout.KindRaw, layout.KindBits} {
		if n, ok := stats.RegionsByKind[kind.String()]; ok {
			printInfo("  %s: %s\n", kind, formatNumber(int64(n)))
		}
	}
	printInfo("  Max nesting: %d levels\n", stats.MaxNesting)
	printInfo("  Compile time: %s\n\n", stats.CompileTime)

	if len(stats.BitsByType) > 0 {
		printInfo("Coverage by Type:\n")
		// Sort types by coverage
		type typeBits struct {
			Type string
			Bits int64
		}
		var types []typeBits
		var total int64
		for t, b := range stats.BitsByType {
			types = append(types, typeBits{t, b})
			total += b
		}
		sort.Slice(types, func(i, j int) bool {
			if types[i].Bits != types[j].Bits {
				return types[i].Bits > types[j].Bits
			}
			return types[i].Type < types[j].Type
		})
		for _, tb := range types {
			percentage := 0.0
			if total > 0 {
				percentage = float64(tb.Bits) * 100.0 / float64(total)
			}
			printInfo("  %s: %s (%.1f%%)\n", tb.Type, formatBits(tb.Bits), percentage)
		}
		printInfo("\n")
	}

	printInfo("Fingerprint: %s\n", stats.Fingerprint)
	return nil
}

// formatBits renders a bit count as a byte size with an optional bit suffix.
func formatBits(bits int64) string {
	s := formatBytes(bits / 8)
	if rem := bits % 8; rem != 0 {
		s += fmt.Sprintf(" + %d bits", rem)
	}
	return s
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	// Add commas
	var result strings.Builder
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return result.String()
}

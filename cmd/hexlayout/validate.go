package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hexlayout/internal/logger"
	"github.com/joshuapare/hexlayout/layout"
	"github.com/joshuapare/hexlayout/layout/document"
	"github.com/joshuapare/hexlayout/layout/verify"
)

var errValidationFailed = errors.New("validation failed")

var allInlineModes = []layout.InlineCommentMode{
	layout.Hidden, layout.FullIndent, layout.ShortIndent, layout.Full, layout.Short,
}

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <data-file> [snapshot]",
		Short: "Validate annotations and compiled layouts",
		Long: `The validate command checks the annotation structures of a data file
and then compiles its layout in every inline comment mode, for both the file
view and the virtual view, verifying each result:

  coverage   - data regions reconstruct every byte exactly once, in order
  nesting    - indented data follows its comment and stays inside it
  zero-length comments never indent

Example:
  hexlayout validate firmware.bin notes.yaml
  hexlayout validate firmware.bin notes.yaml --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
	return cmd
}

type checkResult struct {
	Display     string `json:"display"`
	Mode        string `json:"mode"`
	Regions     int    `json:"regions"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Error       string `json:"error,omitempty"`
}

type validateResult struct {
	File      string        `json:"file"`
	Snapshot  string        `json:"snapshot,omitempty"`
	Valid     bool          `json:"valid"`
	Structure string        `json:"structure_error,omitempty"`
	Checks    []checkResult `json:"checks"`
}

// layoutDomain returns the spans a layout compiled in display must cover.
func layoutDomain(doc *document.Document, display layout.DisplayMode) []verify.Span {
	if display == layout.VirtualView && !doc.Segments().Empty() {
		return verify.SegmentDomain(doc.Segments().Segments())
	}
	return verify.FileDomain(doc.BufferLength())
}

// compileChecked compiles and verifies one layout. Invariant panics from the
// compiler are returned as errors.
func compileChecked(doc *document.Document, display layout.DisplayMode, mode layout.InlineCommentMode) (regions []layout.Region, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, layout.ErrInvariant) {
				regions, err = nil, e
				return
			}
			panic(r)
		}
	}()

	regions = layout.Orchestrate(doc, doc.Segments(), display, mode)
	return regions, verify.AllInvariants(regions, layoutDomain(doc, display))
}

func runValidate(args []string) error {
	dataPath := args[0]
	snapshotPath := snapshotArg(args)

	printVerbose("Validating: %s\n", dataPath)

	doc, f, err := openDocument(dataPath, snapshotPath)
	if err != nil {
		return err
	}
	defer f.Close()

	result := validateResult{File: dataPath, Snapshot: snapshotPath, Valid: true}

	if err := doc.Validate(); err != nil {
		result.Valid = false
		result.Structure = err.Error()
	} else {
		for _, display := range []layout.DisplayMode{layout.FileView, layout.VirtualView} {
			for _, mode := range allInlineModes {
				regions, err := compileChecked(doc, display, mode)
				check := checkResult{Display: display.String(), Mode: mode.String(), Regions: len(regions)}
				if err != nil {
					result.Valid = false
					check.Error = err.Error()
					logger.Warn("layout check failed", "display", check.Display, "mode", check.Mode, "error", err)
				} else {
					check.Fingerprint = verify.Fingerprint(regions)
				}
				result.Checks = append(result.Checks, check)
			}
		}
	}

	// Output as JSON if requested
	if jsonOut {
		if err := printJSON(result); err != nil {
			return err
		}
		if !result.Valid {
			return errValidationFailed
		}
		return nil
	}

	// Text output
	printInfo("\nValidating %s...\n\n", dataPath)

	printInfo("Structure Validation:\n")
	if result.Structure != "" {
		printInfo("  ✗ %s\n", result.Structure)
		printInfo("\nResult: ✗ INVALID\n")
		return errValidationFailed
	}
	printInfo("  ✓ Comments, types and segments consistent\n")

	printInfo("\nLayout Validation:\n")
	for _, c := range result.Checks {
		if c.Error != "" {
			printInfo("  ✗ %-7s %-12s %s\n", c.Display, c.Mode, c.Error)
			continue
		}
		printInfo("  ✓ %-7s %-12s %d regions\n", c.Display, c.Mode, c.Regions)
	}

	if !result.Valid {
		printInfo("\nResult: ✗ INVALID\n")
		return errValidationFailed
	}
	printInfo("\nResult: ✓ VALID\n")
	return nil
}

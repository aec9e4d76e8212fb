package printer

import (
	"fmt"
	"io"

	"github.com/joshuapare/hexlayout/internal/buf"
	"github.com/joshuapare/hexlayout/layout"
	"github.com/joshuapare/hexlayout/layout/datatype"
)

const (
	DefaultIndentSize    = 2
	DefaultMaxValueBytes = 16
	DefaultMaxValues     = 8
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs a human-readable indented listing.
	FormatText Format = "text"

	// FormatJSON outputs a JSON array of regions.
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" or "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("printer: unknown format %q", s)
	}
}

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per nesting level (text format only).
	// Default: 2
	IndentSize int

	// MaxValueBytes limits how many bytes of raw data to display.
	// Longer blocks are truncated. Set to 0 for no limit.
	// Default: 16
	MaxValueBytes int

	// MaxValues limits how many decoded values of a typed block to display.
	// Set to 0 for no limit.
	// Default: 8
	MaxValues int

	// ShowReal prints the real offset next to the virtual one when they
	// differ.
	// Default: false
	ShowReal bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:        FormatText,
		IndentSize:    DefaultIndentSize,
		MaxValueBytes: DefaultMaxValueBytes,
		MaxValues:     DefaultMaxValues,
		ShowReal:      false,
	}
}

// Printer writes compiled layouts.
type Printer struct {
	opts   Options
	writer io.Writer
	data   []byte
}

// New creates a new Printer.
//
// data holds the document bytes the regions index into; it may be nil, in
// which case only the structure is printed.
//
// Example:
//
//	regions := layout.Orchestrate(doc, doc.Segments(), layout.FileView, layout.FullIndent)
//	p := printer.New(os.Stdout, doc.Data(), printer.DefaultOptions())
//	p.Print(regions)
func New(w io.Writer, data []byte, opts Options) *Printer {
	return &Printer{
		writer: w,
		data:   data,
		opts:   opts,
	}
}

// Print writes regions in the configured format.
func (p *Printer) Print(regions []layout.Region) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON(regions)
	case FormatText:
		return p.printText(regions)
	default:
		return p.printText(regions)
	}
}

// bytesOf returns the document bytes touched by r.
func (p *Printer) bytesOf(r layout.Region) []byte {
	start := r.Offset.Byte()
	end := r.End().Byte()
	if !r.End().ByteAligned() {
		end++
	}
	return buf.Clamp(p.data, int(start), int(end-start))
}

// values decodes a typed block through its payload, if it can.
func (p *Printer) values(r layout.Region) ([]string, bool) {
	f, ok := r.Payload.(datatype.Formatter)
	if !ok || p.data == nil {
		return nil, false
	}
	return f.Format(p.bytesOf(r)), true
}

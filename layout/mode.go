package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode indicates a mode name that does not parse.
var ErrUnknownMode = errors.New("layout: unknown mode")

// InlineCommentMode controls how comments appear in the layout.
type InlineCommentMode int

const (
	// Hidden suppresses comment markers entirely.
	Hidden InlineCommentMode = iota
	// FullIndent shows full comment text and nests the commented data.
	FullIndent
	// ShortIndent truncates comment text and nests the commented data.
	ShortIndent
	// Full shows full comment text without nesting.
	Full
	// Short truncates comment text without nesting.
	Short
)

var inlineModeNames = []string{"hidden", "full-indent", "short-indent", "full", "short"}

// Nests reports whether data under a comment is indented beneath it.
func (m InlineCommentMode) Nests() bool { return m == FullIndent || m == ShortIndent }

// Truncates reports whether comment text is shortened.
func (m InlineCommentMode) Truncates() bool { return m == Short || m == ShortIndent }

func (m InlineCommentMode) String() string {
	if m >= 0 && int(m) < len(inlineModeNames) {
		return inlineModeNames[m]
	}
	return fmt.Sprintf("InlineCommentMode(%d)", int(m))
}

// ParseInlineCommentMode parses the names produced by String.
func ParseInlineCommentMode(s string) (InlineCommentMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range inlineModeNames {
		if s == name {
			return InlineCommentMode(i), nil
		}
	}
	return Hidden, fmt.Errorf("%w: inline comment mode %q", ErrUnknownMode, s)
}

// DisplayMode selects between the file layout and the virtual segment
// layout.
type DisplayMode int

const (
	// FileView lays out the whole document in real offset order.
	FileView DisplayMode = iota
	// VirtualView lays out the virtual segments in virtual offset order.
	VirtualView
)

func (d DisplayMode) String() string {
	switch d {
	case FileView:
		return "file"
	case VirtualView:
		return "virtual"
	default:
		return fmt.Sprintf("DisplayMode(%d)", int(d))
	}
}

// ParseDisplayMode parses "file" or "virtual".
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file":
		return FileView, nil
	case "virtual":
		return VirtualView, nil
	default:
		return FileView, fmt.Errorf("%w: display mode %q", ErrUnknownMode, s)
	}
}

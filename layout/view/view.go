// Package view hosts the region compiler for a display. It owns the current
// display settings, coalesces recompile requests while frozen, and hands each
// fresh layout to a Sink.
package view

import (
	"log/slog"
	"time"

	"github.com/joshuapare/hexlayout/internal/logger"
	"github.com/joshuapare/hexlayout/layout"
	"github.com/joshuapare/hexlayout/layout/virt"
)

// Document is the state a View compiles.
type Document interface {
	layout.Source
	Segments() *virt.Map
}

// Sink consumes compiled layouts. ReplaceRegions receives the complete list
// each time.
type Sink interface {
	ReplaceRegions(regions []layout.Region)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(regions []layout.Region)

// ReplaceRegions calls f.
func (f SinkFunc) ReplaceRegions(regions []layout.Region) { f(regions) }

// Options configures a View.
type Options struct {
	Logger     *slog.Logger // Default: logger.L
	InlineMode layout.InlineCommentMode
	Display    layout.DisplayMode
}

// View recompiles a document's layout on request. It is not safe for
// concurrent use.
type View struct {
	doc  Document
	sink Sink
	log  *slog.Logger

	inline  layout.InlineCommentMode
	display layout.DisplayMode

	frozen  int
	pending bool

	regions []layout.Region
}

// New returns a View over doc. No layout is compiled until Repopulate.
func New(doc Document, sink Sink, opts Options) *View {
	log := opts.Logger
	if log == nil {
		log = logger.L
	}
	return &View{
		doc:     doc,
		sink:    sink,
		log:     log,
		inline:  opts.InlineMode,
		display: opts.Display,
	}
}

// Repopulate recompiles the layout, or records the request while frozen.
func (v *View) Repopulate() {
	if v.frozen > 0 {
		v.pending = true
		return
	}
	v.compile()
}

// Freeze defers recompiles until the matching Thaw. Calls nest.
func (v *View) Freeze() { v.frozen++ }

// Thaw ends one Freeze. When the outermost freeze ends with a request
// pending, the layout is compiled exactly once.
func (v *View) Thaw() {
	if v.frozen == 0 {
		return
	}
	v.frozen--
	if v.frozen == 0 && v.pending {
		v.compile()
	}
}

// Frozen reports whether recompiles are deferred.
func (v *View) Frozen() bool { return v.frozen > 0 }

// Pending reports whether a recompile is waiting for Thaw.
func (v *View) Pending() bool { return v.pending }

// InlineCommentMode returns the current comment mode.
func (v *View) InlineCommentMode() layout.InlineCommentMode { return v.inline }

// SetInlineCommentMode changes the comment mode and recompiles if it
// differs.
func (v *View) SetInlineCommentMode(m layout.InlineCommentMode) {
	if m == v.inline {
		return
	}
	v.inline = m
	v.Repopulate()
}

// DisplayMode returns the current display mode.
func (v *View) DisplayMode() layout.DisplayMode { return v.display }

// SetDisplayMode changes the display mode and recompiles if it differs.
func (v *View) SetDisplayMode(d layout.DisplayMode) {
	if d == v.display {
		return
	}
	v.display = d
	v.Repopulate()
}

// Regions returns the last compiled layout.
func (v *View) Regions() []layout.Region { return v.regions }

func (v *View) compile() {
	v.pending = false
	start := time.Now()

	segs := v.doc.Segments()
	v.regions = layout.Orchestrate(v.doc, segs, v.display, v.inline)

	segCount := 0
	if segs != nil {
		segCount = segs.Len()
	}
	v.log.Debug("layout compiled",
		"display", v.display.String(),
		"inline", v.inline.String(),
		"segments", segCount,
		"regions", len(v.regions),
		"elapsed", time.Since(start))

	if v.sink != nil {
		v.sink.ReplaceRegions(v.regions)
	}
}

// Package layout compiles a document's comments and type partition into the
// ordered list of regions a hex view displays.
//
// # Overview
//
// Compile scans one real sub-range of the document. At every position it
// emits the comment markers that start there, then cuts the longest data
// block that does not cross the next comment, the end of an indented
// comment, or the end of the current type assignment. The type registry
// decides whether that block becomes a typed block, raw bytes, or a
// sub-byte bit block.
//
// Orchestrate runs Compile once for the whole file, or once per virtual
// segment, and concatenates the results.
//
// # Failure
//
// The inputs are trusted. A type partition with gaps, a comment tree out of
// order, a nesting stack that would close an outer comment before an inner
// one, or a type factory returning a block of the wrong size are bugs in the
// code maintaining the document. Compile panics with an *InvariantError in
// those cases rather than emitting a layout that maps offsets wrongly.
package layout

import (
	"errors"
	"fmt"

	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/comments"
	"github.com/joshuapare/hexlayout/layout/datatype"
	"github.com/joshuapare/hexlayout/layout/typemap"
)

// ErrInvariant is wrapped by every InvariantError.
var ErrInvariant = errors.New("layout: structural invariant violated")

// InvariantError reports corrupt input detected while compiling.
type InvariantError struct {
	Offset  bitoff.BitOffset
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("layout: invariant violated at %s: %s", e.Offset, e.Message)
}

// Unwrap lets errors.Is match ErrInvariant.
func (e *InvariantError) Unwrap() error { return ErrInvariant }

func invariant(at bitoff.BitOffset, format string, args ...any) {
	panic(&InvariantError{Offset: at, Message: fmt.Sprintf(format, args...)})
}

// Resolver maps a type assignment to its descriptor. *datatype.Registry
// implements it.
type Resolver interface {
	Resolve(name string, opts typemap.Options) *datatype.Descriptor
}

// Source is the read-only document state the compiler consumes.
type Source interface {
	BufferLength() bitoff.BitOffset
	Comments() *comments.Tree
	Types() typemap.Partition
	Registry() Resolver
}

// compiler holds the scan state of one Compile call.
type compiler struct {
	tree     *comments.Tree
	resolver Resolver
	docEnd   bitoff.BitOffset

	nest     bool
	truncate bool

	nextData bitoff.BitOffset
	nextVirt bitoff.BitOffset
	remain   bitoff.BitOffset

	comment comments.NodeID
	types   *typemap.Scanner
	limits  []bitoff.BitOffset

	regions []Region
}

// Compile lays out [realBase, realBase+length), numbering the emitted data
// blocks from virtBase.
//
// A zero length yields a single zero-length raw block as an insertion
// anchor. When the output would otherwise end on a comment marker, a
// zero-length raw block is appended so the end position is addressable.
func Compile(src Source, realBase, virtBase, length bitoff.BitOffset, mode InlineCommentMode) []Region {
	if length.IsZero() {
		return []Region{RawBlock(realBase, bitoff.Zero, virtBase)}
	}
	if length.Less(bitoff.Zero) || realBase.Less(bitoff.Zero) {
		invariant(realBase, "negative range [%s+%s]", realBase, length)
	}

	c := &compiler{
		tree:     src.Comments(),
		resolver: src.Registry(),
		docEnd:   src.BufferLength(),
		nest:     mode.Nests(),
		truncate: mode.Truncates(),
		nextData: realBase,
		nextVirt: virtBase,
		remain:   length,
		comment:  comments.None,
		types:    typemap.NewScanner(src.Types(), realBase),
	}

	if c.docEnd.Less(realBase.Add(length)) {
		invariant(realBase, "range end %s beyond document length %s", realBase.Add(length), c.docEnd)
	}

	if mode != Hidden && c.tree != nil {
		c.comment = c.tree.FirstAtOrAfter(realBase)
	}

	for bitoff.Zero.Less(c.remain) {
		c.step()
	}

	if c.nextData == c.docEnd {
		c.emitComments()
	}

	if last := c.regions[len(c.regions)-1]; last.Kind == KindComment {
		c.regions = append(c.regions, RawBlock(c.nextData, bitoff.Zero, c.nextVirt))
	}

	return c.regions
}

func (c *compiler) step() {
	if c.comment != comments.None && c.tree.Key(c.comment).Offset.Less(c.nextData) {
		invariant(c.nextData, "comment %s precedes scan position", c.tree.Key(c.comment))
	}

	for n := len(c.limits); n > 0 && c.limits[n-1].LessEq(c.nextData); n = len(c.limits) {
		c.limits = c.limits[:n-1]
	}

	c.emitComments()

	length := c.clampLength()
	c.emitData(length)
}

// emitComments emits every comment starting at nextData, parents before
// children.
func (c *compiler) emitComments() {
	for c.comment != comments.None {
		key := c.tree.Key(c.comment)
		if key.Offset != c.nextData {
			return
		}

		indentLength := bitoff.Zero
		if c.nest && !key.Length.IsZero() {
			indentLength = bitoff.Min(key.Length, c.remain)
		}

		c.regions = append(c.regions, CommentMarker(
			key.Offset, key.Length, c.tree.Text(c.comment), c.truncate, c.nextVirt, indentLength))

		if c.nest && !key.Length.IsZero() {
			end := key.End()
			if n := len(c.limits); n > 0 && c.limits[n-1].Less(end) {
				invariant(c.nextData, "comment %s ends after enclosing boundary %s", key, c.limits[n-1])
			}
			c.limits = append(c.limits, end)
		}

		c.comment = c.tree.Next(c.comment)
		if c.comment != comments.None && c.tree.Key(c.comment).Offset.Less(key.Offset) {
			invariant(c.nextData, "comment %s out of order after %s", c.tree.Key(c.comment), key)
		}
	}
}

// clampLength returns the longest span from nextData that crosses no comment
// start, open nesting boundary or type assignment boundary.
func (c *compiler) clampLength() bitoff.BitOffset {
	length := c.remain

	if c.comment != comments.None {
		length = bitoff.Min(length, c.tree.Key(c.comment).Offset.Sub(c.nextData))
	}

	if n := len(c.limits); n > 0 {
		limit := c.limits[n-1]
		if !c.nextData.Less(limit) {
			invariant(c.nextData, "nesting boundary %s not ahead of scan position", limit)
		}
		length = bitoff.Min(length, limit.Sub(c.nextData))
	}

	if !c.types.Valid() || !c.types.Entry().Contains(c.nextData) {
		invariant(c.nextData, "no type assignment covers position")
	}
	length = bitoff.Min(length, c.types.Remaining(c.nextData))

	if !bitoff.Zero.Less(length) {
		invariant(c.nextData, "empty data span")
	}
	return length
}

// emitData emits one data block of at most length and advances the scan.
func (c *compiler) emitData(length bitoff.BitOffset) {
	entry := c.types.Entry()
	emitted := false

	dt := c.resolver.Resolve(entry.Type.Name, entry.Type.Options)
	if dt != nil && dt.Factory != nil && dt.FixedSize.LessEq(length) {
		typed := length
		if !dt.FixedSize.IsZero() && dt.FixedSize.Less(typed) {
			typed = dt.FixedSize
		} else if rem := typed.Mod(dt.WordSize); !rem.IsZero() {
			typed = typed.Sub(rem)
		}

		if bitoff.Zero.Less(typed) {
			payload := dt.Factory(c.nextData, typed, c.nextVirt)
			if payload == nil || payload.Length() != typed {
				invariant(c.nextData, "type %q built a block of the wrong size (want %s)", entry.Type.Name, typed)
			}
			c.regions = append(c.regions, TypedBlock(c.nextData, typed, c.nextVirt, entry.Type.Name, payload))
			length = typed
			emitted = true
		}
	}

	if !emitted {
		if length.Less(bitoff.OneByte) {
			c.regions = append(c.regions, BitBlock(c.nextData, length, c.nextVirt))
		} else {
			length = length.TruncateBytes()
			c.regions = append(c.regions, RawBlock(c.nextData, length, c.nextVirt))
		}
	}

	c.nextData = c.nextData.Add(length)
	c.nextVirt = c.nextVirt.Add(length)
	c.remain = c.remain.Sub(length)
	c.types.AdvanceIfDone(c.nextData)
}

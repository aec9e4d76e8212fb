// Package document bundles the annotation state of one open file: its
// length and bytes, comment tree, type partition, virtual segment map and
// the type registry used to resolve assignments.
//
// A Document satisfies layout.Source, so it can be handed straight to
// layout.Compile and layout.Orchestrate.
package document

import (
	"fmt"

	"github.com/joshuapare/hexlayout/layout"
	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/comments"
	"github.com/joshuapare/hexlayout/layout/datatype"
	"github.com/joshuapare/hexlayout/layout/typemap"
	"github.com/joshuapare/hexlayout/layout/virt"
)

// Document is the host-owned annotation state.
type Document struct {
	length   bitoff.BitOffset
	data     []byte
	comments *comments.Tree
	types    *typemap.Map
	segments *virt.Map
	registry *datatype.Registry
}

// New returns an empty-annotated document of the given length with the
// default type registry and no data bytes.
func New(length bitoff.BitOffset) *Document {
	return &Document{
		length:   length,
		comments: comments.New(),
		types:    typemap.New(length),
		segments: virt.New(),
		registry: datatype.Default(),
	}
}

// FromBytes returns a document over data.
func FromBytes(data []byte) *Document {
	d := New(bitoff.Bytes(int64(len(data))))
	d.data = data
	return d
}

// BufferLength returns the size of the byte domain.
func (d *Document) BufferLength() bitoff.BitOffset { return d.length }

// Data returns the document bytes, which may be nil.
func (d *Document) Data() []byte { return d.data }

// Comments returns the comment tree.
func (d *Document) Comments() *comments.Tree { return d.comments }

// Types returns the type partition as consumed by the compiler.
func (d *Document) Types() typemap.Partition { return d.types }

// TypeMap returns the mutable type partition.
func (d *Document) TypeMap() *typemap.Map { return d.types }

// Registry returns the type resolver.
func (d *Document) Registry() layout.Resolver { return d.registry }

// TypeRegistry returns the concrete registry.
func (d *Document) TypeRegistry() *datatype.Registry { return d.registry }

// SetRegistry replaces the type registry.
func (d *Document) SetRegistry(r *datatype.Registry) { d.registry = r }

// Segments returns the virtual segment map.
func (d *Document) Segments() *virt.Map { return d.segments }

// AddComment inserts a comment.
func (d *Document) AddComment(offset, length bitoff.BitOffset, text string) error {
	if d.length.Less(offset.Add(length)) {
		return fmt.Errorf("document: comment [%s+%s] beyond length %s", offset, length, d.length)
	}
	_, err := d.comments.Insert(comments.Key{Offset: offset, Length: length}, text)
	return err
}

// SetType assigns a data type to a range.
func (d *Document) SetType(offset, length bitoff.BitOffset, name string, opts typemap.Options) error {
	return d.types.Set(offset, length, typemap.Type{Name: name, Options: opts})
}

// AddSegment maps a real range into the virtual view.
func (d *Document) AddSegment(virtOffset, realOffset, length bitoff.BitOffset) error {
	s := virt.Segment{VirtOffset: virtOffset, RealOffset: realOffset, Length: length}
	if d.length.Less(s.RealEnd()) {
		return fmt.Errorf("%w: real range [%s, %s) beyond length %s", virt.ErrInvalidSegment, realOffset, s.RealEnd(), d.length)
	}
	return d.segments.Add(s)
}

// Validate checks every structure against its invariants.
func (d *Document) Validate() error {
	if err := d.comments.Validate(); err != nil {
		return err
	}
	if err := d.types.Validate(); err != nil {
		return err
	}
	if d.types.Length() != d.length {
		return fmt.Errorf("%w: partition covers %s, document is %s", typemap.ErrNotCovering, d.types.Length(), d.length)
	}
	return d.segments.ValidateAgainst(d.length)
}

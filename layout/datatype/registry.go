// Package datatype resolves type names from the type partition into
// descriptors that tell the layout compiler how to cut typed data blocks.
//
// A Descriptor carries the type's word size, an optional fixed size and a
// Factory that builds the opaque Payload stored in a typed block. Payloads
// only have to report their length; those that can render their bytes also
// implement Formatter.
//
// Registering a new type:
//
//	reg := datatype.Default()
//	reg.Register("rgb", "RGB triple", "Colour", func(typemap.Options) (*datatype.Descriptor, error) {
//	    return &datatype.Descriptor{WordSize: bitoff.Bytes(3), Factory: newRGB}, nil
//	})
package datatype

import (
	"errors"
	"fmt"
	"sort"

	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/typemap"
)

var (
	// ErrDuplicate indicates a type name was registered twice.
	ErrDuplicate = errors.New("datatype: type already registered")
	// ErrUnknownType indicates a type name with no registration.
	ErrUnknownType = errors.New("datatype: unknown type")
	// ErrBadOptions indicates options a type constructor cannot accept.
	ErrBadOptions = errors.New("datatype: invalid type options")
)

// Payload is the opaque, type-specific content of a typed data block.
type Payload interface {
	// Length returns the extent of the block the payload describes.
	Length() bitoff.BitOffset
}

// Formatter is implemented by payloads that can decode their bytes.
//
// data starts at the byte containing the block's first bit and covers every
// byte the block touches; it may be shorter when the document data is
// truncated.
type Formatter interface {
	Format(data []byte) []string
}

// Factory builds the payload for a block at offset (real) and virtOffset
// (display) spanning length.
type Factory func(offset, length, virtOffset bitoff.BitOffset) Payload

// Descriptor describes how a type cuts the byte domain.
type Descriptor struct {
	Name  string
	Label string
	Group string

	// WordSize is the smallest unit of the type; typed blocks are a multiple
	// of it. At least one bit.
	WordSize bitoff.BitOffset

	// FixedSize, when non-zero, is the exact size of every block.
	FixedSize bitoff.BitOffset

	// Factory builds typed blocks. A nil Factory makes the range render as
	// raw data.
	Factory Factory
}

// Constructor builds a Descriptor for the given options.
type Constructor func(opts typemap.Options) (*Descriptor, error)

// Info describes a registered type for listing.
type Info struct {
	Name  string
	Label string
	Group string
}

type entry struct {
	info Info
	ctor Constructor
}

// Registry maps type names to constructors. The empty name always resolves
// to the untyped descriptor.
type Registry struct {
	types map[string]entry
}

// NewRegistry returns a registry holding only the untyped default.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]entry)}
}

// Register adds a type constructor under name.
func (r *Registry) Register(name, label, group string, ctor Constructor) error {
	if name == "" {
		return fmt.Errorf("%w: empty name is reserved", ErrDuplicate)
	}
	if _, ok := r.types[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	r.types[name] = entry{info: Info{Name: name, Label: label, Group: group}, ctor: ctor}
	return nil
}

// mustRegister is used for the built-in types, whose names are known unique.
func (r *Registry) mustRegister(name, label, group string, ctor Constructor) {
	if err := r.Register(name, label, group, ctor); err != nil {
		panic(err)
	}
}

// Untyped is the descriptor for the default assignment.
var Untyped = &Descriptor{
	Label:    "Untyped data",
	WordSize: bitoff.OneByte,
}

// Resolve returns the descriptor for name and options, or nil when the name
// is unknown or the options are rejected. Callers render nil as raw data.
func (r *Registry) Resolve(name string, opts typemap.Options) *Descriptor {
	d, err := r.Lookup(name, opts)
	if err != nil {
		return nil
	}
	return d
}

// Lookup is Resolve with the reason for a failed resolution.
func (r *Registry) Lookup(name string, opts typemap.Options) (*Descriptor, error) {
	if name == "" {
		return Untyped, nil
	}
	e, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, name)
	}
	d, err := e.ctor(opts)
	if err != nil {
		return nil, fmt.Errorf("datatype: %s: %w", name, err)
	}
	d.Name = name
	if d.Label == "" {
		d.Label = e.info.Label
	}
	if d.Group == "" {
		d.Group = e.info.Group
	}
	if !bitoff.Zero.Less(d.WordSize) {
		return nil, fmt.Errorf("%w: %s: word size must be at least one bit", ErrBadOptions, name)
	}
	return d, nil
}

// Types lists the registered types sorted by group then name.
func (r *Registry) Types() []Info {
	out := make([]Info, 0, len(r.types))
	for _, e := range r.types {
		out = append(out, e.info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Default returns a registry with the built-in types registered.
func Default() *Registry {
	r := NewRegistry()
	registerNumbers(r)
	registerBits(r)
	registerRecord(r)
	registerText(r)
	registerGUID(r)
	return r
}

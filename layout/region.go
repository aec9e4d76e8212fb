package layout

import (
	"fmt"

	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/datatype"
)

// Kind discriminates the Region variants.
type Kind uint8

const (
	// KindComment is a comment marker. It consumes no bytes.
	KindComment Kind = iota + 1
	// KindTyped is a block built by a type's region factory.
	KindTyped
	// KindRaw is untyped data, whole bytes only (or the zero-length anchor).
	KindRaw
	// KindBits is untyped data shorter than one byte.
	KindBits
)

func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindTyped:
		return "typed"
	case KindRaw:
		return "raw"
	case KindBits:
		return "bits"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Region is one unit of the compiled layout. Which fields are meaningful
// depends on Kind:
//
//   - KindComment: Offset/Length are the comment key; Text, Truncate and the
//     indent range apply. IndentLength is zero unless the comment nests its
//     data.
//   - KindTyped: Offset/Length/VirtOffset, TypeName and Payload.
//   - KindRaw, KindBits: Offset/Length/VirtOffset.
//
// Regions are values; the compiler never touches one after emitting it.
type Region struct {
	Kind Kind

	Offset     bitoff.BitOffset
	Length     bitoff.BitOffset
	VirtOffset bitoff.BitOffset

	Text         string
	Truncate     bool
	IndentOffset bitoff.BitOffset
	IndentLength bitoff.BitOffset
	// Synthetic marks an explanatory marker that does not belong to any
	// comment in the document.
	Synthetic bool

	TypeName string
	Payload  datatype.Payload
}

// CommentMarker returns a comment region.
func CommentMarker(offset, length bitoff.BitOffset, text string, truncate bool, indentOffset, indentLength bitoff.BitOffset) Region {
	return Region{
		Kind:         KindComment,
		Offset:       offset,
		Length:       length,
		Text:         text,
		Truncate:     truncate,
		IndentOffset: indentOffset,
		IndentLength: indentLength,
	}
}

// TypedBlock returns a typed data region.
func TypedBlock(offset, length, virtOffset bitoff.BitOffset, typeName string, payload datatype.Payload) Region {
	return Region{
		Kind:       KindTyped,
		Offset:     offset,
		Length:     length,
		VirtOffset: virtOffset,
		TypeName:   typeName,
		Payload:    payload,
	}
}

// RawBlock returns an untyped whole-byte region.
func RawBlock(offset, length, virtOffset bitoff.BitOffset) Region {
	return Region{Kind: KindRaw, Offset: offset, Length: length, VirtOffset: virtOffset}
}

// BitBlock returns an untyped sub-byte region.
func BitBlock(offset, length, virtOffset bitoff.BitOffset) Region {
	return Region{Kind: KindBits, Offset: offset, Length: length, VirtOffset: virtOffset}
}

// Consumes reports whether the region covers document bytes.
func (r Region) Consumes() bool { return r.Kind != KindComment }

// End returns Offset+Length.
func (r Region) End() bitoff.BitOffset { return r.Offset.Add(r.Length) }

// VirtEnd returns VirtOffset+Length.
func (r Region) VirtEnd() bitoff.BitOffset { return r.VirtOffset.Add(r.Length) }

// Nests reports whether the region is a comment with an indent range.
func (r Region) Nests() bool {
	return r.Kind == KindComment && !r.IndentLength.IsZero()
}

func (r Region) String() string {
	switch r.Kind {
	case KindComment:
		if r.Nests() {
			return fmt.Sprintf("comment[%s+%s] %q indent=[%s+%s]", r.Offset, r.Length, r.Text, r.IndentOffset, r.IndentLength)
		}
		return fmt.Sprintf("comment[%s+%s] %q", r.Offset, r.Length, r.Text)
	case KindTyped:
		return fmt.Sprintf("%s[%s+%s]@%s", r.TypeName, r.Offset, r.Length, r.VirtOffset)
	default:
		return fmt.Sprintf("%s[%s+%s]@%s", r.Kind, r.Offset, r.Length, r.VirtOffset)
	}
}

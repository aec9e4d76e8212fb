// Package verify provides validation functions for compiled region lists.
// These helpers are used in tests and by the CLI to ensure layout invariants
// hold: data regions reconstruct the domain exactly, indented comments nest
// properly, and zero-length comments never indent.
package verify

import (
	"fmt"

	"github.com/joshuapare/hexlayout/layout"
	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/virt"
)

// ValidationError describes the first violated invariant.
type ValidationError struct {
	Type    string
	Message string
	Index   int // region index, -1 if N/A
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s at region %d: %s", e.Type, e.Index, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Span is one contiguous piece of the domain a layout must cover, given in
// both real and virtual coordinates.
type Span struct {
	Real   bitoff.BitOffset
	Virt   bitoff.BitOffset
	Length bitoff.BitOffset
}

// FileDomain is the domain of a file view over length bytes.
func FileDomain(length bitoff.BitOffset) []Span {
	return []Span{{Length: length}}
}

// SegmentDomain is the domain of a virtual view over segs.
func SegmentDomain(segs []virt.Segment) []Span {
	out := make([]Span, 0, len(segs))
	for _, s := range segs {
		out = append(out, Span{Real: s.RealOffset, Virt: s.VirtOffset, Length: s.Length})
	}
	return out
}

// AllInvariants validates all layout invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(regions []layout.Region, domain []Span) error {
	if err := Shapes(regions); err != nil {
		return err
	}
	if err := Coverage(regions, domain); err != nil {
		return err
	}
	if err := ZeroLengthIndent(regions); err != nil {
		return err
	}
	return Nesting(regions)
}

// Shapes checks each region's length against its kind.
func Shapes(regions []layout.Region) error {
	for i, r := range regions {
		switch r.Kind {
		case layout.KindRaw:
			if !r.Length.IsZero() && (r.Length.Less(bitoff.OneByte) || !r.Length.ByteAligned()) {
				return &ValidationError{
					Type:    "Shapes",
					Message: fmt.Sprintf("raw block length %s is not a whole number of bytes", r.Length),
					Index:   i,
				}
			}
		case layout.KindBits:
			if r.Length.IsZero() || !r.Length.Less(bitoff.OneByte) {
				return &ValidationError{
					Type:    "Shapes",
					Message: fmt.Sprintf("bit block length %s outside (0, 1 byte)", r.Length),
					Index:   i,
				}
			}
		case layout.KindTyped:
			if r.Length.IsZero() || r.Payload == nil || r.Payload.Length() != r.Length {
				return &ValidationError{
					Type:    "Shapes",
					Message: fmt.Sprintf("typed block %q has inconsistent length %s", r.TypeName, r.Length),
					Index:   i,
				}
			}
		case layout.KindComment:
		default:
			return &ValidationError{
				Type:    "Shapes",
				Message: fmt.Sprintf("unknown region kind %s", r.Kind),
				Index:   i,
			}
		}
	}
	return nil
}

// Coverage checks that the data regions, in order, tile every span of the
// domain with no gaps or overlaps, in both real and virtual coordinates.
// Zero-length data regions are insertion anchors and are ignored.
func Coverage(regions []layout.Region, domain []Span) error {
	span := 0
	var consumed bitoff.BitOffset

	for i, r := range regions {
		if !r.Consumes() || r.Length.IsZero() {
			continue
		}

		for span < len(domain) && consumed == domain[span].Length {
			span++
			consumed = bitoff.Zero
		}
		if span >= len(domain) {
			return &ValidationError{
				Type:    "Coverage",
				Message: fmt.Sprintf("region %s beyond end of domain", r),
				Index:   i,
			}
		}

		s := domain[span]
		wantReal := s.Real.Add(consumed)
		wantVirt := s.Virt.Add(consumed)
		if r.Offset != wantReal || r.VirtOffset != wantVirt {
			return &ValidationError{
				Type:    "Coverage",
				Message: fmt.Sprintf("region %s does not continue at real %s / virt %s", r, wantReal, wantVirt),
				Index:   i,
				Details: map[string]interface{}{
					"span":     span,
					"consumed": consumed.String(),
				},
			}
		}

		consumed = consumed.Add(r.Length)
		if s.Length.Less(consumed) {
			return &ValidationError{
				Type:    "Coverage",
				Message: fmt.Sprintf("region %s overruns span ending at real %s", r, s.Real.Add(s.Length)),
				Index:   i,
			}
		}
	}

	for span < len(domain) && consumed == domain[span].Length {
		span++
		consumed = bitoff.Zero
	}
	for span < len(domain) && domain[span].Length.IsZero() {
		span++
	}
	if span < len(domain) {
		s := domain[span]
		return &ValidationError{
			Type:    "Coverage",
			Message: fmt.Sprintf("span %d covered up to %s of %s", span, consumed, s.Length),
			Index:   -1,
		}
	}
	return nil
}

// ZeroLengthIndent checks that zero-length comments never carry an indent
// range.
func ZeroLengthIndent(regions []layout.Region) error {
	for i, r := range regions {
		if r.Kind == layout.KindComment && r.Length.IsZero() && !r.IndentLength.IsZero() {
			return &ValidationError{
				Type:    "ZeroLengthIndent",
				Message: fmt.Sprintf("zero-length comment %q has indent length %s", r.Text, r.IndentLength),
				Index:   i,
			}
		}
	}
	return nil
}

type openIndent struct {
	start, end bitoff.BitOffset
	index      int
	started    bool
}

// Nesting checks indented comments: the data after a nesting marker starts
// exactly at its indent offset, every data region inside an open indent
// lies within it, and an inner indent never outlives its ancestor.
func Nesting(regions []layout.Region) error {
	var stack []*openIndent

	for i, r := range regions {
		pos := r.VirtOffset
		if r.Kind == layout.KindComment {
			pos = r.IndentOffset
		}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if pos.Less(top.end) {
				break
			}
			if !top.started {
				return &ValidationError{
					Type:    "Nesting",
					Message: fmt.Sprintf("indent of region %d closed before any data", top.index),
					Index:   i,
				}
			}
			stack = stack[:len(stack)-1]
		}

		if r.Kind == layout.KindComment {
			if !r.Nests() {
				continue
			}
			end := r.IndentOffset.Add(r.IndentLength)
			if n := len(stack); n > 0 && stack[n-1].end.Less(end) {
				return &ValidationError{
					Type:    "Nesting",
					Message: fmt.Sprintf("indent [%s, %s) crosses enclosing boundary %s", r.IndentOffset, end, stack[n-1].end),
					Index:   i,
				}
			}
			stack = append(stack, &openIndent{start: r.IndentOffset, end: end, index: i})
			continue
		}

		if r.Length.IsZero() {
			continue
		}
		for _, open := range stack {
			if !open.started && r.VirtOffset != open.start {
				return &ValidationError{
					Type:    "Nesting",
					Message: fmt.Sprintf("data after nesting marker %d starts at %s, want %s", open.index, r.VirtOffset, open.start),
					Index:   i,
				}
			}
			open.started = true
		}
		if n := len(stack); n > 0 && stack[n-1].end.Less(r.VirtEnd()) {
			return &ValidationError{
				Type:    "Nesting",
				Message: fmt.Sprintf("region %s crosses indent end %s", r, stack[n-1].end),
				Index:   i,
			}
		}
	}
	return nil
}

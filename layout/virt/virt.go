// Package virt maps a virtual address space onto real document offsets.
//
// Each Segment splices one real byte range into the virtual space. Virtual
// ranges are kept ascending and pairwise disjoint, so the map can be
// iterated in display order by the layout orchestrator.
package virt

import (
	"errors"
	"fmt"
	"sort"

	"github.com/joshuapare/hexlayout/layout/bitoff"
)

var (
	// ErrOverlap indicates a virtual range collides with an existing segment.
	ErrOverlap = errors.New("virt: virtual range overlaps existing segment")
	// ErrInvalidSegment indicates a negative offset or non-positive length.
	ErrInvalidSegment = errors.New("virt: invalid segment")
)

// Segment maps [VirtOffset, VirtOffset+Length) onto [RealOffset, RealOffset+Length).
type Segment struct {
	VirtOffset bitoff.BitOffset
	RealOffset bitoff.BitOffset
	Length     bitoff.BitOffset
}

// VirtEnd returns the end of the virtual range.
func (s Segment) VirtEnd() bitoff.BitOffset { return s.VirtOffset.Add(s.Length) }

// RealEnd returns the end of the real range.
func (s Segment) RealEnd() bitoff.BitOffset { return s.RealOffset.Add(s.Length) }

// Map is an ordered set of segments.
type Map struct {
	segs []Segment
}

// New returns an empty map.
func New() *Map { return &Map{} }

// Len returns the number of segments.
func (m *Map) Len() int { return len(m.segs) }

// Empty reports whether the map has no segments.
func (m *Map) Empty() bool { return len(m.segs) == 0 }

// Segments returns a copy of the segments in ascending virtual order.
func (m *Map) Segments() []Segment {
	out := make([]Segment, len(m.segs))
	copy(out, m.segs)
	return out
}

// Add inserts a segment. It fails if the virtual range overlaps an existing
// segment.
func (m *Map) Add(s Segment) error {
	if s.VirtOffset.Less(bitoff.Zero) || s.RealOffset.Less(bitoff.Zero) || !bitoff.Zero.Less(s.Length) {
		return fmt.Errorf("%w: virt=%s real=%s len=%s", ErrInvalidSegment, s.VirtOffset, s.RealOffset, s.Length)
	}

	i := sort.Search(len(m.segs), func(i int) bool {
		return s.VirtOffset.Less(m.segs[i].VirtEnd())
	})
	if i < len(m.segs) && m.segs[i].VirtOffset.Less(s.VirtEnd()) {
		return fmt.Errorf("%w: [%s, %s)", ErrOverlap, s.VirtOffset, s.VirtEnd())
	}

	m.segs = append(m.segs, Segment{})
	copy(m.segs[i+1:], m.segs[i:])
	m.segs[i] = s
	return nil
}

// Remove deletes the segment starting at virtOffset.
func (m *Map) Remove(virtOffset bitoff.BitOffset) bool {
	for i, s := range m.segs {
		if s.VirtOffset == virtOffset {
			m.segs = append(m.segs[:i], m.segs[i+1:]...)
			return true
		}
	}
	return false
}

// VirtToReal translates a virtual position to its real offset.
func (m *Map) VirtToReal(v bitoff.BitOffset) (bitoff.BitOffset, bool) {
	i := sort.Search(len(m.segs), func(i int) bool {
		return v.Less(m.segs[i].VirtEnd())
	})
	if i < len(m.segs) && m.segs[i].VirtOffset.LessEq(v) {
		s := m.segs[i]
		return s.RealOffset.Add(v.Sub(s.VirtOffset)), true
	}
	return bitoff.Zero, false
}

// RealToVirt translates a real offset to the first virtual position showing
// it. Real ranges may be mapped more than once.
func (m *Map) RealToVirt(r bitoff.BitOffset) (bitoff.BitOffset, bool) {
	for _, s := range m.segs {
		if s.RealOffset.LessEq(r) && r.Less(s.RealEnd()) {
			return s.VirtOffset.Add(r.Sub(s.RealOffset)), true
		}
	}
	return bitoff.Zero, false
}

// ValidateAgainst checks every real range fits inside [0, length).
func (m *Map) ValidateAgainst(length bitoff.BitOffset) error {
	for _, s := range m.segs {
		if length.Less(s.RealEnd()) {
			return fmt.Errorf("%w: real range [%s, %s) exceeds document length %s",
				ErrInvalidSegment, s.RealOffset, s.RealEnd(), length)
		}
	}
	return nil
}

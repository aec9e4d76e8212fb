// Package typemap implements the type partition: an ordered map covering the
// whole byte domain with no gaps or overlaps, assigning each range a data
// type name and options.
//
// The empty type name is the default ("untyped") assignment. Adjacent
// assignments with the same name and options are merged, so the entry count
// stays proportional to the number of distinct annotated spans.
package typemap

import (
	"errors"
	"fmt"
	"maps"
	"sort"

	"github.com/joshuapare/hexlayout/layout/bitoff"
)

var (
	// ErrOutOfRange indicates a range extending outside [0, Length()).
	ErrOutOfRange = errors.New("typemap: range out of bounds")
	// ErrNotCovering indicates the assignments do not partition the domain.
	ErrNotCovering = errors.New("typemap: assignments do not cover domain")
)

// Options are type-specific parameters such as an encoding or a record size.
type Options map[string]string

// Equal reports whether o and p hold the same options. A nil map equals an
// empty one.
func (o Options) Equal(p Options) bool {
	return maps.Equal(o, p)
}

// Type names a data type with its options.
type Type struct {
	Name    string
	Options Options
}

// Equal reports whether t and u describe the same type.
func (t Type) Equal(u Type) bool {
	return t.Name == u.Name && t.Options.Equal(u.Options)
}

// Entry is one assignment of the partition.
type Entry struct {
	Offset bitoff.BitOffset
	Length bitoff.BitOffset
	Type   Type
}

// End returns Offset+Length.
func (e Entry) End() bitoff.BitOffset { return e.Offset.Add(e.Length) }

// Contains reports whether p falls inside the entry.
func (e Entry) Contains(p bitoff.BitOffset) bool {
	return e.Offset.LessEq(p) && p.Less(e.End())
}

// Map is the type partition over [0, Length()).
type Map struct {
	length  bitoff.BitOffset
	entries []Entry
}

// New returns a partition of [0, length) with a single default assignment.
// A zero-length domain has no entries.
func New(length bitoff.BitOffset) *Map {
	m := &Map{length: length}
	if length.Less(bitoff.Zero) {
		m.length = bitoff.Zero
	}
	if !m.length.IsZero() {
		m.entries = []Entry{{Offset: bitoff.Zero, Length: m.length}}
	}
	return m
}

// Length returns the size of the covered domain.
func (m *Map) Length() bitoff.BitOffset { return m.length }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// At returns entry i.
func (m *Map) At(i int) Entry { return m.entries[i] }

// Entries returns a copy of all entries in ascending order.
func (m *Map) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Find returns the index of the entry covering p.
func (m *Map) Find(p bitoff.BitOffset) (int, bool) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return p.Less(m.entries[i].End())
	})
	if i < len(m.entries) && m.entries[i].Contains(p) {
		return i, true
	}
	return -1, false
}

// Set assigns typ to [offset, offset+length), splitting the entries it
// partially covers and merging equal neighbours.
func (m *Map) Set(offset, length bitoff.BitOffset, typ Type) error {
	if offset.Less(bitoff.Zero) || length.Less(bitoff.Zero) || m.length.Less(offset.Add(length)) {
		return fmt.Errorf("%w: [%s+%s) in domain of %s", ErrOutOfRange, offset, length, m.length)
	}
	if length.IsZero() {
		return nil
	}

	end := offset.Add(length)
	out := make([]Entry, 0, len(m.entries)+2)
	inserted := false

	for _, e := range m.entries {
		if e.End().LessEq(offset) || end.LessEq(e.Offset) {
			if !inserted && end.LessEq(e.Offset) {
				out = append(out, Entry{Offset: offset, Length: length, Type: typ})
				inserted = true
			}
			out = append(out, e)
			continue
		}

		// e overlaps the new range; keep the parts outside it.
		if e.Offset.Less(offset) {
			out = append(out, Entry{Offset: e.Offset, Length: offset.Sub(e.Offset), Type: e.Type})
		}
		if !inserted {
			out = append(out, Entry{Offset: offset, Length: length, Type: typ})
			inserted = true
		}
		if end.Less(e.End()) {
			out = append(out, Entry{Offset: end, Length: e.End().Sub(end), Type: e.Type})
		}
	}
	if !inserted {
		out = append(out, Entry{Offset: offset, Length: length, Type: typ})
	}

	m.entries = merge(out)
	return nil
}

// Clear resets [offset, offset+length) to the default type.
func (m *Map) Clear(offset, length bitoff.BitOffset) error {
	return m.Set(offset, length, Type{})
}

func merge(entries []Entry) []Entry {
	if len(entries) == 0 {
		return entries
	}
	out := entries[:1]
	for _, e := range entries[1:] {
		last := &out[len(out)-1]
		if last.Type.Equal(e.Type) && last.End() == e.Offset {
			last.Length = last.Length.Add(e.Length)
			continue
		}
		out = append(out, e)
	}
	return out
}

// Validate checks the entries form a total, non-overlapping covering of
// [0, Length()).
func (m *Map) Validate() error {
	next := bitoff.Zero
	for i, e := range m.entries {
		if e.Offset != next {
			return fmt.Errorf("%w: entry %d starts at %s, expected %s", ErrNotCovering, i, e.Offset, next)
		}
		if !bitoff.Zero.Less(e.Length) {
			return fmt.Errorf("%w: entry %d has length %s", ErrNotCovering, i, e.Length)
		}
		next = e.End()
	}
	if next != m.length {
		return fmt.Errorf("%w: coverage ends at %s, domain is %s", ErrNotCovering, next, m.length)
	}
	return nil
}

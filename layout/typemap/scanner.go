package typemap

import "github.com/joshuapare/hexlayout/layout/bitoff"

// Partition is the read-only view of a type partition consumed by the
// layout compiler. *Map implements it.
type Partition interface {
	Len() int
	At(i int) Entry
	Find(p bitoff.BitOffset) (int, bool)
}

// Scanner walks the entries of a Partition in ascending order.
type Scanner struct {
	p Partition
	i int
}

// NewScanner returns a scanner positioned at the entry covering pos. The
// scanner is invalid when no entry covers pos.
func NewScanner(p Partition, pos bitoff.BitOffset) *Scanner {
	i, ok := p.Find(pos)
	if !ok {
		i = p.Len()
	}
	return &Scanner{p: p, i: i}
}

// Valid reports whether the scanner points at an entry.
func (s *Scanner) Valid() bool { return s.i >= 0 && s.i < s.p.Len() }

// Entry returns the current entry. Valid must be true.
func (s *Scanner) Entry() Entry { return s.p.At(s.i) }

// End returns the upper bound of the current entry.
func (s *Scanner) End() bitoff.BitOffset { return s.Entry().End() }

// Remaining returns the distance from pos to the end of the current entry.
func (s *Scanner) Remaining(pos bitoff.BitOffset) bitoff.BitOffset {
	return s.End().Sub(pos)
}

// Advance moves to the next entry.
func (s *Scanner) Advance() { s.i++ }

// AdvanceIfDone moves to the next entry when pos has reached the end of the
// current one.
func (s *Scanner) AdvanceIfDone(pos bitoff.BitOffset) {
	if s.Valid() && s.End().LessEq(pos) {
		s.i++
	}
}

// Package bitoff implements BitOffset, the byte+bit position and length value
// used throughout the layout packages.
//
// A BitOffset is stored as a single signed bit count, so arithmetic carries
// and borrows across the byte boundary for free. The byte/bit split is
// derived with floor division, which keeps Bit() in [0,7] even for the
// negative values that appear as deltas.
//
// Example:
//
//	a := bitoff.New(10, 6)
//	b := a.Add(bitoff.Bits(3)) // 11.1
//	b.Byte()                   // 11
//	b.Bit()                    // 1
package bitoff

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const bitsPerByte = 8

// ErrSyntax indicates a string could not be parsed as a BitOffset.
var ErrSyntax = errors.New("bitoff: invalid syntax")

// BitOffset is a position or length measured in bytes and bits.
type BitOffset struct {
	bits int64
}

var (
	// Zero is the zero offset.
	Zero = BitOffset{}
	// OneByte is a length of exactly one byte.
	OneByte = BitOffset{bits: bitsPerByte}
)

// New returns the BitOffset b*8+bit. bit may be any value; it carries into
// the byte component.
func New(b, bit int64) BitOffset {
	return BitOffset{bits: b*bitsPerByte + bit}
}

// Bytes returns a whole-byte BitOffset.
func Bytes(n int64) BitOffset {
	return BitOffset{bits: n * bitsPerByte}
}

// Bits returns a BitOffset of n bits.
func Bits(n int64) BitOffset {
	return BitOffset{bits: n}
}

// Byte returns the whole-byte component, rounded toward negative infinity.
func (o BitOffset) Byte() int64 {
	b := o.bits / bitsPerByte
	if o.bits%bitsPerByte < 0 {
		b--
	}
	return b
}

// Bit returns the sub-byte component in [0,7].
func (o BitOffset) Bit() int {
	r := o.bits % bitsPerByte
	if r < 0 {
		r += bitsPerByte
	}
	return int(r)
}

// TotalBits returns the offset as a bit count.
func (o BitOffset) TotalBits() int64 { return o.bits }

// ByteAligned reports whether the offset has no sub-byte component.
func (o BitOffset) ByteAligned() bool { return o.bits%bitsPerByte == 0 }

// IsZero reports whether o is zero.
func (o BitOffset) IsZero() bool { return o.bits == 0 }

// Add returns o+d.
func (o BitOffset) Add(d BitOffset) BitOffset { return BitOffset{bits: o.bits + d.bits} }

// Sub returns o-d.
func (o BitOffset) Sub(d BitOffset) BitOffset { return BitOffset{bits: o.bits - d.bits} }

// Neg returns -o.
func (o BitOffset) Neg() BitOffset { return BitOffset{bits: -o.bits} }

// Mod returns o modulo d. It panics if d is zero.
func (o BitOffset) Mod(d BitOffset) BitOffset {
	if d.bits == 0 {
		panic("bitoff: modulo by zero")
	}
	return BitOffset{bits: o.bits % d.bits}
}

// TruncateBytes drops the sub-byte component.
func (o BitOffset) TruncateBytes() BitOffset { return Bytes(o.Byte()) }

// Cmp returns -1, 0 or +1 depending on whether o is less than, equal to, or
// greater than p.
func (o BitOffset) Cmp(p BitOffset) int {
	switch {
	case o.bits < p.bits:
		return -1
	case o.bits > p.bits:
		return 1
	default:
		return 0
	}
}

// Less reports o < p.
func (o BitOffset) Less(p BitOffset) bool { return o.bits < p.bits }

// LessEq reports o <= p.
func (o BitOffset) LessEq(p BitOffset) bool { return o.bits <= p.bits }

// Min returns the smaller of a and b.
func Min(a, b BitOffset) BitOffset {
	if a.bits < b.bits {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b BitOffset) BitOffset {
	if a.bits > b.bits {
		return a
	}
	return b
}

// String formats the offset as "N" when byte aligned and "N.B" otherwise.
func (o BitOffset) String() string {
	if o.ByteAligned() {
		return strconv.FormatInt(o.Byte(), 10)
	}
	return fmt.Sprintf("%d.%d", o.Byte(), o.Bit())
}

// Hex formats the byte component as 0x%08X with an optional ".B" suffix.
func (o BitOffset) Hex() string {
	if o.ByteAligned() {
		return fmt.Sprintf("0x%08X", o.Byte())
	}
	return fmt.Sprintf("0x%08X.%d", o.Byte(), o.Bit())
}

// Parse parses "N", "0xN" or "N.B" where B is a bit count in [0,7]. Only
// non-negative positions are accepted.
func Parse(s string) (BitOffset, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty string", ErrSyntax)
	}

	bytePart, bitPart, hasBit := strings.Cut(s, ".")

	b, err := strconv.ParseInt(bytePart, 0, 64)
	if err != nil || b < 0 {
		return Zero, fmt.Errorf("%w: %q", ErrSyntax, s)
	}

	var bit int64
	if hasBit {
		bit, err = strconv.ParseInt(bitPart, 10, 8)
		if err != nil || bit < 0 || bit >= bitsPerByte {
			return Zero, fmt.Errorf("%w: bit component of %q must be 0-7", ErrSyntax, s)
		}
	}

	return New(b, bit), nil
}

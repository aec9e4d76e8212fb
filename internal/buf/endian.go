// Package buf contains helpers for endian-safe decoding of typed data blocks.
package buf

import (
	"encoding/binary"
	"math"
)

// Uint reads an unsigned integer of width bytes (1, 2, 4 or 8) from b.
// Returns 0 when b is too short or width is unsupported.
func Uint(b []byte, width int, bigEndian bool) uint64 {
	if len(b) < width {
		return 0
	}
	var order binary.ByteOrder = binary.LittleEndian
	if bigEndian {
		order = binary.BigEndian
	}
	switch width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	case 8:
		return order.Uint64(b)
	default:
		return 0
	}
}

// Int reads a two's complement signed integer of width bytes from b.
// Returns 0 when b is too short or width is unsupported.
func Int(b []byte, width int, bigEndian bool) int64 {
	v := Uint(b, width, bigEndian)
	switch width {
	case 1:
		return int64(int8(v))
	case 2:
		return int64(int16(v))
	case 4:
		return int64(int32(v))
	case 8:
		return int64(v)
	default:
		return 0
	}
}

// F32 reads an IEEE-754 single from b. Returns 0 when b is too short.
func F32(b []byte, bigEndian bool) float32 {
	return math.Float32frombits(uint32(Uint(b, 4, bigEndian)))
}

// F64 reads an IEEE-754 double from b. Returns 0 when b is too short.
func F64(b []byte, bigEndian bool) float64 {
	return math.Float64frombits(Uint(b, 8, bigEndian))
}

// BitsMSB reads width bits (at most 64) starting startBit bits into b, most
// significant bit first. Bits beyond the end of b read as zero.
func BitsMSB(b []byte, startBit, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		pos := startBit + i
		v <<= 1
		if pos/8 < len(b) && b[pos/8]&(0x80>>(pos%8)) != 0 {
			v |= 1
		}
	}
	return v
}

package datatype

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/hexlayout/internal/buf"
	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/typemap"
)

const (
	groupNumber = "Number"
	groupBits   = "Bit field"
	groupText   = "Text"
	groupMisc   = "Structure"

	maxBitWidth = 64
)

// block holds the position every built-in payload carries.
type block struct {
	offset bitoff.BitOffset
	length bitoff.BitOffset
	virt   bitoff.BitOffset
}

func (b block) Length() bitoff.BitOffset { return b.length }

// Offset returns the real offset of the block.
func (b block) Offset() bitoff.BitOffset { return b.offset }

// VirtOffset returns the display offset of the block.
func (b block) VirtOffset() bitoff.BitOffset { return b.virt }

// realign returns n whole bytes of data starting bit bits into it.
func realign(data []byte, bit int, n int64) []byte {
	if bit == 0 {
		if int64(len(data)) > n {
			return data[:n]
		}
		return data
	}
	avail := (int64(len(data))*8 - int64(bit)) / 8
	if avail < n {
		n = avail
	}
	if n <= 0 {
		return nil
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(buf.BitsMSB(data, bit+8*i, 8))
	}
	return out
}

// ---------------------------------------------------------------------------
// Fixed-width numbers

type numberKind uint8

const (
	kindUnsigned numberKind = iota
	kindSigned
	kindFloat
)

type numberBlock struct {
	block
	width     int
	kind      numberKind
	bigEndian bool
}

func (b *numberBlock) Format(data []byte) []string {
	raw := realign(data, b.offset.Bit(), b.length.Byte())
	var out []string
	for i := 0; i+b.width <= len(raw); i += b.width {
		word := raw[i : i+b.width]
		switch b.kind {
		case kindSigned:
			out = append(out, strconv.FormatInt(buf.Int(word, b.width, b.bigEndian), 10))
		case kindFloat:
			if b.width == 4 {
				out = append(out, strconv.FormatFloat(float64(buf.F32(word, b.bigEndian)), 'g', -1, 32))
			} else {
				out = append(out, strconv.FormatFloat(buf.F64(word, b.bigEndian), 'g', -1, 64))
			}
		default:
			out = append(out, strconv.FormatUint(buf.Uint(word, b.width, b.bigEndian), 10))
		}
	}
	return out
}

func numberType(width int, kind numberKind, bigEndian bool) Constructor {
	return func(typemap.Options) (*Descriptor, error) {
		return &Descriptor{
			WordSize: bitoff.Bytes(int64(width)),
			Factory: func(offset, length, virt bitoff.BitOffset) Payload {
				return &numberBlock{
					block:     block{offset: offset, length: length, virt: virt},
					width:     width,
					kind:      kind,
					bigEndian: bigEndian,
				}
			},
		}, nil
	}
}

func registerNumbers(r *Registry) {
	r.mustRegister("u8", "unsigned 8-bit", groupNumber, numberType(1, kindUnsigned, false))
	r.mustRegister("s8", "signed 8-bit", groupNumber, numberType(1, kindSigned, false))

	for _, width := range []int{2, 4, 8} {
		bits := width * 8
		for _, order := range []struct {
			suffix string
			label  string
			big    bool
		}{
			{"le", "little endian", false},
			{"be", "big endian", true},
		} {
			r.mustRegister(fmt.Sprintf("u%d%s", bits, order.suffix),
				fmt.Sprintf("unsigned %d-bit (%s)", bits, order.label), groupNumber,
				numberType(width, kindUnsigned, order.big))
			r.mustRegister(fmt.Sprintf("s%d%s", bits, order.suffix),
				fmt.Sprintf("signed %d-bit (%s)", bits, order.label), groupNumber,
				numberType(width, kindSigned, order.big))
			if width >= 4 {
				r.mustRegister(fmt.Sprintf("f%d%s", bits, order.suffix),
					fmt.Sprintf("%d-bit float (%s)", bits, order.label), groupNumber,
					numberType(width, kindFloat, order.big))
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Bit fields

type bitsBlock struct {
	block
	width int
}

func (b *bitsBlock) Format(data []byte) []string {
	var out []string
	total := int(b.length.TotalBits())
	for i := 0; i+b.width <= total; i += b.width {
		v := buf.BitsMSB(data, b.offset.Bit()+i, b.width)
		out = append(out, strconv.FormatUint(v, 10))
	}
	return out
}

func registerBits(r *Registry) {
	r.mustRegister("bits", "bit field", groupBits, func(opts typemap.Options) (*Descriptor, error) {
		width := 1
		if s, ok := opts["width"]; ok {
			w, err := strconv.Atoi(s)
			if err != nil || w < 1 || w > maxBitWidth {
				return nil, fmt.Errorf("%w: width %q must be 1-%d", ErrBadOptions, s, maxBitWidth)
			}
			width = w
		}
		return &Descriptor{
			WordSize: bitoff.Bits(int64(width)),
			Factory: func(offset, length, virt bitoff.BitOffset) Payload {
				return &bitsBlock{block: block{offset: offset, length: length, virt: virt}, width: width}
			},
		}, nil
	})
}

// ---------------------------------------------------------------------------
// Fixed-size records

type recordBlock struct {
	block
}

func (b *recordBlock) Format(data []byte) []string {
	n := b.length.Byte()
	if !b.length.ByteAligned() {
		n++
	}
	return []string{hex.EncodeToString(realign(data, b.offset.Bit(), n))}
}

func registerRecord(r *Registry) {
	r.mustRegister("record", "fixed-size record", groupMisc, func(opts typemap.Options) (*Descriptor, error) {
		s, ok := opts["size"]
		if !ok {
			return nil, fmt.Errorf("%w: record requires a size", ErrBadOptions)
		}
		size, err := bitoff.Parse(s)
		if err != nil || size.IsZero() {
			return nil, fmt.Errorf("%w: record size %q", ErrBadOptions, s)
		}
		return &Descriptor{
			WordSize:  bitoff.Bits(1),
			FixedSize: size,
			Factory: func(offset, length, virt bitoff.BitOffset) Payload {
				return &recordBlock{block: block{offset: offset, length: length, virt: virt}}
			},
		}, nil
	})
}

// ---------------------------------------------------------------------------
// GUIDs

type guidBlock struct {
	block
}

func (b *guidBlock) Format(data []byte) []string {
	raw := realign(data, b.offset.Bit(), b.length.Byte())
	var out []string
	for i := 0; i+16 <= len(raw); i += 16 {
		g := raw[i : i+16]
		out = append(out, fmt.Sprintf("{%08X-%04X-%04X-%s-%s}",
			buf.Uint(g[0:4], 4, false),
			buf.Uint(g[4:6], 2, false),
			buf.Uint(g[6:8], 2, false),
			strings.ToUpper(hex.EncodeToString(g[8:10])),
			strings.ToUpper(hex.EncodeToString(g[10:16]))))
	}
	return out
}

func registerGUID(r *Registry) {
	r.mustRegister("guid", "GUID (Microsoft layout)", groupMisc, func(typemap.Options) (*Descriptor, error) {
		return &Descriptor{
			WordSize: bitoff.Bytes(16),
			Factory: func(offset, length, virt bitoff.BitOffset) Payload {
				return &guidBlock{block: block{offset: offset, length: length, virt: virt}}
			},
		}, nil
	})
}

package printer

import (
	"fmt"
	"strings"

	"github.com/joshuapare/hexlayout/internal/buf"
	"github.com/joshuapare/hexlayout/layout"
	"github.com/joshuapare/hexlayout/layout/bitoff"
)

// printText prints regions one per line, indenting data under nesting
// comments.
func (p *Printer) printText(regions []layout.Region) error {
	var open []bitoff.BitOffset

	for _, r := range regions {
		pos := r.VirtOffset
		if r.Kind == layout.KindComment {
			pos = r.IndentOffset
		}
		for len(open) > 0 && open[len(open)-1].LessEq(pos) {
			open = open[:len(open)-1]
		}

		indent := strings.Repeat(" ", len(open)*p.opts.IndentSize)

		var body string
		switch r.Kind {
		case layout.KindComment:
			body = p.commentText(r)
		case layout.KindTyped:
			body = p.typedText(r)
		case layout.KindBits:
			body = p.bitsText(r)
		default:
			body = p.rawText(r)
		}

		if _, err := fmt.Fprintf(p.writer, "%s  %s%s\n", p.offsetColumn(r, pos), indent, body); err != nil {
			return err
		}

		if r.Nests() {
			open = append(open, r.IndentOffset.Add(r.IndentLength))
		}
	}

	return nil
}

func (p *Printer) offsetColumn(r layout.Region, pos bitoff.BitOffset) string {
	col := pos.Hex()
	if p.opts.ShowReal && r.Kind != layout.KindComment && r.Offset != r.VirtOffset {
		col += " (" + r.Offset.Hex() + ")"
	}
	return col
}

func (p *Printer) commentText(r layout.Region) string {
	text := r.Text
	if r.Truncate {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[:i] + " ..."
		}
	}
	if r.Synthetic {
		return "# " + text
	}
	return fmt.Sprintf("# [%s+%s] %s", r.Offset, r.Length, text)
}

func (p *Printer) typedText(r layout.Region) string {
	vals, ok := p.values(r)
	if !ok {
		return fmt.Sprintf("%s <%s bytes>", r.TypeName, r.Length)
	}

	more := ""
	if p.opts.MaxValues > 0 && len(vals) > p.opts.MaxValues {
		more = fmt.Sprintf(", ... (%d values)", len(vals))
		vals = vals[:p.opts.MaxValues]
	}
	return fmt.Sprintf("%s = %s%s", r.TypeName, strings.Join(vals, ", "), more)
}

func (p *Printer) rawText(r layout.Region) string {
	if r.Length.IsZero() {
		return "<end>"
	}
	if p.data == nil {
		return fmt.Sprintf("<%s bytes>", r.Length)
	}

	data := p.alignedBytes(r)
	maxBytes := p.opts.MaxValueBytes
	if maxBytes == 0 {
		maxBytes = len(data)
	}
	displayLen := min(len(data), maxBytes)
	truncated := ""
	if len(data) > maxBytes {
		truncated = fmt.Sprintf(" (truncated, %d total bytes)", len(data))
	}
	if displayLen == 0 {
		return "<missing>" + truncated
	}
	return fmt.Sprintf("%X%s", data[:displayLen], truncated)
}

func (p *Printer) bitsText(r layout.Region) string {
	width := int(r.Length.TotalBits())
	if p.data == nil {
		return fmt.Sprintf("<%d bits>", width)
	}
	v := buf.BitsMSB(p.bytesOf(r), r.Offset.Bit(), width)
	return fmt.Sprintf("0b%0*b", width, v)
}

// alignedBytes returns the whole bytes of r, shifted when r starts inside a
// byte.
func (p *Printer) alignedBytes(r layout.Region) []byte {
	touched := p.bytesOf(r)
	bit := r.Offset.Bit()
	if bit == 0 {
		return touched
	}
	n := r.Length.Byte()
	if avail := (int64(len(touched))*8 - int64(bit)) / 8; avail < n {
		n = avail
	}
	if n <= 0 {
		return nil
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(buf.BitsMSB(touched, bit+8*i, 8))
	}
	return out
}

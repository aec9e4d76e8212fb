package printer

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/joshuapare/hexlayout/layout"
)

// jsonRegion represents one region in JSON format. Offsets use the
// BitOffset "N" / "N.B" syntax.
type jsonRegion struct {
	Kind       string      `json:"kind"`
	Offset     string      `json:"offset"`
	Length     string      `json:"length"`
	VirtOffset string      `json:"virt_offset,omitempty"`
	Text       string      `json:"text,omitempty"`
	Truncate   bool        `json:"truncate,omitempty"`
	Synthetic  bool        `json:"synthetic,omitempty"`
	Indent     *jsonIndent `json:"indent,omitempty"`
	Type       string      `json:"type,omitempty"`
	Values     []string    `json:"values,omitempty"`
	Hex        string      `json:"hex,omitempty"`
}

type jsonIndent struct {
	Offset string `json:"offset"`
	Length string `json:"length"`
}

// printJSON prints regions as an indented JSON array.
func (p *Printer) printJSON(regions []layout.Region) error {
	out := make([]jsonRegion, 0, len(regions))
	for _, r := range regions {
		out = append(out, p.toJSON(r))
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}

func (p *Printer) toJSON(r layout.Region) jsonRegion {
	jr := jsonRegion{
		Kind:   r.Kind.String(),
		Offset: r.Offset.String(),
		Length: r.Length.String(),
	}

	switch r.Kind {
	case layout.KindComment:
		jr.Text = r.Text
		jr.Truncate = r.Truncate
		jr.Synthetic = r.Synthetic
		if r.Nests() {
			jr.Indent = &jsonIndent{Offset: r.IndentOffset.String(), Length: r.IndentLength.String()}
		}
	case layout.KindTyped:
		jr.VirtOffset = r.VirtOffset.String()
		jr.Type = r.TypeName
		if vals, ok := p.values(r); ok {
			jr.Values = vals
		}
	case layout.KindRaw:
		jr.VirtOffset = r.VirtOffset.String()
		if data := p.alignedBytes(r); len(data) > 0 && !r.Length.IsZero() {
			if p.opts.MaxValueBytes > 0 && len(data) > p.opts.MaxValueBytes {
				data = data[:p.opts.MaxValueBytes]
			}
			jr.Hex = hex.EncodeToString(data)
		}
	default:
		jr.VirtOffset = r.VirtOffset.String()
		if p.data != nil {
			jr.Values = []string{p.bitsText(r)}
		}
	}
	return jr
}

package datatype

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/typemap"
)

const defaultTextEncoding = "ascii"

type textEncoding struct {
	enc      encoding.Encoding
	wordSize int64
}

// textEncodings are the names accepted without consulting htmlindex.
var textEncodings = map[string]textEncoding{
	"ascii":        {enc: charmap.ISO8859_1, wordSize: 1},
	"latin1":       {enc: charmap.ISO8859_1, wordSize: 1},
	"iso-8859-1":   {enc: charmap.ISO8859_1, wordSize: 1},
	"windows-1252": {enc: charmap.Windows1252, wordSize: 1},
	"cp1252":       {enc: charmap.Windows1252, wordSize: 1},
	"cp437":        {enc: charmap.CodePage437, wordSize: 1},
	"ebcdic":       {enc: charmap.CodePage037, wordSize: 1},
	"utf-8":        {enc: xunicode.UTF8, wordSize: 1},
	"utf-16le":     {enc: xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM), wordSize: 2},
	"utf-16be":     {enc: xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM), wordSize: 2},
}

func lookupEncoding(name string) (textEncoding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if te, ok := textEncodings[name]; ok {
		return te, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return textEncoding{}, fmt.Errorf("%w: unknown encoding %q", ErrBadOptions, name)
	}
	return textEncoding{enc: enc, wordSize: 1}, nil
}

type textBlock struct {
	block
	encoding string
	enc      encoding.Encoding
}

// Format decodes the block as a single string. Undecodable input becomes
// U+FFFD and non-printable characters are shown as '.'.
func (b *textBlock) Format(data []byte) []string {
	raw := realign(data, b.offset.Bit(), b.length.Byte())
	decoded, _, err := transform.Bytes(b.enc.NewDecoder(), raw)
	if err != nil {
		return []string{strings.Repeat(".", len(raw))}
	}
	clean := strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return '.'
	}, string(decoded))
	return []string{clean}
}

// Encoding returns the encoding name the block was created with.
func (b *textBlock) Encoding() string { return b.encoding }

func registerText(r *Registry) {
	r.mustRegister("text", "text", groupText, func(opts typemap.Options) (*Descriptor, error) {
		name := opts["encoding"]
		if name == "" {
			name = defaultTextEncoding
		}
		te, err := lookupEncoding(name)
		if err != nil {
			return nil, err
		}
		return &Descriptor{
			Label:    "text (" + name + ")",
			WordSize: bitoff.Bytes(te.wordSize),
			Factory: func(offset, length, virt bitoff.BitOffset) Payload {
				return &textBlock{
					block:    block{offset: offset, length: length, virt: virt},
					encoding: name,
					enc:      te.enc,
				}
			},
		}, nil
	})
}

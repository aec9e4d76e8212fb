package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/comments"
	"github.com/joshuapare/hexlayout/layout/typemap"
	"github.com/joshuapare/hexlayout/layout/virt"
)

const yamlSnapshot = `
length: 64
comments:
  - offset: 0x10
    length: 8
    text: header
  - offset: "20.4"
    length: 0
    text: flag
types:
  - offset: 16
    length: 8
    type: u32le
  - offset: 24
    length: 4
    type: text
    options:
      encoding: utf-16le
segments:
  - virt: 0
    real: 16
    length: 16
`

const jsoncSnapshot = `{
  // whole header
  "comments": [
    {"offset": 16, "length": 8, "text": "header"},
    {"offset": "20.4", "length": 0, "text": "flag"}, /* trailing comma next */
  ],
  "types": [
    {"offset": "0x10", "length": 8, "type": "u32le"},
  ],
  "segments": [],
}`

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a/b.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("B.YML"))
	assert.Equal(t, FormatJSONC, FormatFromPath("b.jsonc"))
	assert.Equal(t, FormatJSONC, FormatFromPath("b.json"))
}

func TestParseYAML(t *testing.T) {
	s, err := Parse([]byte(yamlSnapshot), FormatYAML)
	require.NoError(t, err)

	require.NotNil(t, s.Length)
	assert.Equal(t, bitoff.Bytes(64), s.Length.BitOffset)
	require.Len(t, s.Comments, 2)
	assert.Equal(t, bitoff.Bytes(16), s.Comments[0].Offset.BitOffset)
	assert.Equal(t, bitoff.New(20, 4), s.Comments[1].Offset.BitOffset)
	require.Len(t, s.Types, 2)
	assert.Equal(t, "utf-16le", s.Types[1].Options["encoding"])
	require.Len(t, s.Segments, 1)
	assert.Equal(t, bitoff.Bytes(16), s.Segments[0].Real.BitOffset)
}

func TestParseJSONC(t *testing.T) {
	s, err := Parse([]byte(jsoncSnapshot), FormatJSONC)
	require.NoError(t, err)

	assert.Nil(t, s.Length)
	require.Len(t, s.Comments, 2)
	assert.Equal(t, bitoff.New(20, 4), s.Comments[1].Offset.BitOffset)
	require.Len(t, s.Types, 1)
	assert.Equal(t, bitoff.Bytes(16), s.Types[0].Offset.BitOffset)
	assert.Empty(t, s.Segments)
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"negative offset", "comments:\n  - offset: -1\n    length: 1\n", FormatYAML},
		{"bad bit", "comments:\n  - offset: \"1.9\"\n    length: 1\n", FormatYAML},
		{"unknown field", "colour: blue\n", FormatYAML},
		{"mapping offset", "comments:\n  - offset: {a: 1}\n", FormatYAML},
		{"json garbage", `{"comments": [`, FormatJSONC},
		{"json unknown field", `{"colour": "blue"}`, FormatJSONC},
		{"json bad offset", `{"types": [{"offset": "abc"}]}`, FormatJSONC},
		{"unknown format", `{}`, Format("toml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			require.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}
}

func TestParseEmptyYAML(t *testing.T) {
	s, err := Parse(nil, FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, s.Comments)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "notes.yaml")
	jsoncPath := filepath.Join(dir, "notes.jsonc")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlSnapshot), 0o644))
	require.NoError(t, os.WriteFile(jsoncPath, []byte(jsoncSnapshot), 0o644))

	s, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, s.Types, 2)

	s, err = Load(jsoncPath)
	require.NoError(t, err)
	assert.Len(t, s.Types, 1)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDocument(t *testing.T) {
	s, err := Parse([]byte(yamlSnapshot), FormatYAML)
	require.NoError(t, err)

	d, err := s.Document(bitoff.Zero, nil)
	require.NoError(t, err)
	require.NoError(t, d.Validate())

	assert.Equal(t, bitoff.Bytes(64), d.BufferLength())
	assert.Equal(t, 2, d.Comments().Len())
	assert.Equal(t, 1, d.Segments().Len())
	idx, ok := d.TypeMap().Find(bitoff.Bytes(25))
	require.True(t, ok)
	assert.Equal(t, "text", d.TypeMap().At(idx).Type.Name)

	data := make([]byte, 48)
	d, err = s.Document(bitoff.Zero, data)
	require.NoError(t, err)
	assert.Equal(t, bitoff.Bytes(48), d.BufferLength())
}

func TestDocumentErrors(t *testing.T) {
	_, err := (&Snapshot{}).Document(bitoff.Zero, nil)
	require.ErrorIs(t, err, ErrInvalidSnapshot)

	outOfRange := &Snapshot{Types: []TypeAssignment{{
		Offset: Position{bitoff.Bytes(4)}, Length: Position{bitoff.Bytes(8)}, Type: "u8",
	}}}
	_, err = outOfRange.Document(bitoff.Bytes(8), nil)
	require.ErrorIs(t, err, ErrInvalidSnapshot)
	require.ErrorIs(t, err, typemap.ErrOutOfRange)

	unknown := &Snapshot{Types: []TypeAssignment{{
		Offset: Position{bitoff.Zero}, Length: Position{bitoff.Bytes(4)}, Type: "u128",
	}}}
	_, err = unknown.Document(bitoff.Bytes(8), nil)
	require.ErrorIs(t, err, ErrInvalidSnapshot)

	overlap := &Snapshot{Comments: []Comment{
		{Offset: Position{bitoff.Zero}, Length: Position{bitoff.Bytes(4)}},
		{Offset: Position{bitoff.Bytes(2)}, Length: Position{bitoff.Bytes(4)}},
	}}
	_, err = overlap.Document(bitoff.Bytes(8), nil)
	require.ErrorIs(t, err, comments.ErrOverlap)

	badSegment := &Snapshot{Segments: []Segment{
		{Virt: Position{bitoff.Zero}, Real: Position{bitoff.Bytes(4)}, Length: Position{bitoff.Bytes(8)}},
	}}
	_, err = badSegment.Document(bitoff.Bytes(8), nil)
	require.ErrorIs(t, err, virt.ErrInvalidSegment)
}

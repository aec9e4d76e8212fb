// Package snapshot loads document annotations from disk.
//
// A snapshot lists comments, type assignments and virtual segments for one
// data file. It is authored as YAML (.yaml, .yml) or as JSONC, JSON extended
// with // line comments, /* block comments */ and trailing commas. Every
// offset and length accepts either a number or a string in BitOffset syntax
// ("16", "0x10", "16.3").
//
// The typical flow:
//
//  1. Load or Parse: bytes → Snapshot
//  2. Document: Snapshot + data file → document.Document
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/document"
	"github.com/joshuapare/hexlayout/layout/typemap"
)

// ErrInvalidSnapshot is wrapped by every parse and apply error.
var ErrInvalidSnapshot = errors.New("snapshot: invalid snapshot")

// Format identifies the on-disk encoding.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSONC Format = "jsonc"
)

// FormatFromPath picks YAML for .yaml/.yml files and JSONC otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSONC
	}
}

// Position is a BitOffset that decodes from a number or a string.
type Position struct {
	bitoff.BitOffset
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Position) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: offset must be a scalar", node.Line)
	}
	v, err := bitoff.Parse(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	p.BitOffset = v
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Position) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	v, err := bitoff.Parse(s)
	if err != nil {
		return err
	}
	p.BitOffset = v
	return nil
}

// Comment is one annotation.
type Comment struct {
	Offset Position `yaml:"offset" json:"offset"`
	Length Position `yaml:"length" json:"length"`
	Text   string   `yaml:"text" json:"text"`
}

// TypeAssignment assigns a data type to a range.
type TypeAssignment struct {
	Offset  Position          `yaml:"offset" json:"offset"`
	Length  Position          `yaml:"length" json:"length"`
	Type    string            `yaml:"type" json:"type"`
	Options map[string]string `yaml:"options,omitempty" json:"options,omitempty"`
}

// Segment maps a real range into the virtual view.
type Segment struct {
	Virt   Position `yaml:"virt" json:"virt"`
	Real   Position `yaml:"real" json:"real"`
	Length Position `yaml:"length" json:"length"`
}

// Snapshot is the decoded annotation file.
type Snapshot struct {
	// Length is the document length used when no data file is given.
	Length   *Position        `yaml:"length,omitempty" json:"length,omitempty"`
	Comments []Comment        `yaml:"comments" json:"comments"`
	Types    []TypeAssignment `yaml:"types" json:"types"`
	Segments []Segment        `yaml:"segments" json:"segments"`
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*Snapshot, error) {
	var s Snapshot
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: parsing yaml: %w", ErrInvalidSnapshot, err)
		}
	case FormatJSONC:
		stripped := jsonc.ToJSON(data)
		dec := json.NewDecoder(bytes.NewReader(stripped))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("%w: parsing jsonc: %w", ErrInvalidSnapshot, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidSnapshot, format)
	}
	return &s, nil
}

// Load reads and parses the snapshot at path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	s, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Document builds a document from the snapshot. When data is non-nil the
// document covers data and length is ignored; otherwise it covers length
// bytes, or the snapshot's own length when length is zero.
//
// Type assignments are applied in file order, so later entries override
// earlier ones where they overlap.
func (s *Snapshot) Document(length bitoff.BitOffset, data []byte) (*document.Document, error) {
	var d *document.Document
	switch {
	case data != nil:
		d = document.FromBytes(data)
	case !length.IsZero():
		d = document.New(length)
	case s.Length != nil:
		d = document.New(s.Length.BitOffset)
	default:
		return nil, fmt.Errorf("%w: no document length", ErrInvalidSnapshot)
	}

	for i, t := range s.Types {
		if err := d.SetType(t.Offset.BitOffset, t.Length.BitOffset, t.Type, typemap.Options(t.Options)); err != nil {
			return nil, fmt.Errorf("%w: type %d: %w", ErrInvalidSnapshot, i, err)
		}
		if t.Type != "" && d.TypeRegistry().Resolve(t.Type, t.Options) == nil {
			return nil, fmt.Errorf("%w: type %d: unknown type %q or bad options", ErrInvalidSnapshot, i, t.Type)
		}
	}

	for i, c := range s.Comments {
		if err := d.AddComment(c.Offset.BitOffset, c.Length.BitOffset, c.Text); err != nil {
			return nil, fmt.Errorf("%w: comment %d: %w", ErrInvalidSnapshot, i, err)
		}
	}

	for i, seg := range s.Segments {
		if err := d.AddSegment(seg.Virt.BitOffset, seg.Real.BitOffset, seg.Length.BitOffset); err != nil {
			return nil, fmt.Errorf("%w: segment %d: %w", ErrInvalidSnapshot, i, err)
		}
	}

	return d, nil
}

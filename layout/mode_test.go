package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hexlayout/layout"
	"github.com/joshuapare/hexlayout/layout/bitoff"
)

func TestInlineCommentModeRoundTrip(t *testing.T) {
	for _, m := range []layout.InlineCommentMode{
		layout.Hidden, layout.FullIndent, layout.ShortIndent, layout.Full, layout.Short,
	} {
		got, err := layout.ParseInlineCommentMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := layout.ParseInlineCommentMode("sideways")
	require.ErrorIs(t, err, layout.ErrUnknownMode)
}

func TestInlineCommentModeFlags(t *testing.T) {
	tests := []struct {
		mode     layout.InlineCommentMode
		nests    bool
		truncate bool
	}{
		{layout.Hidden, false, false},
		{layout.FullIndent, true, false},
		{layout.ShortIndent, true, true},
		{layout.Full, false, false},
		{layout.Short, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			assert.Equal(t, tt.nests, tt.mode.Nests())
			assert.Equal(t, tt.truncate, tt.mode.Truncates())
		})
	}
}

func TestParseDisplayMode(t *testing.T) {
	m, err := layout.ParseDisplayMode(" Virtual ")
	require.NoError(t, err)
	assert.Equal(t, layout.VirtualView, m)

	m, err = layout.ParseDisplayMode("file")
	require.NoError(t, err)
	assert.Equal(t, layout.FileView, m)

	_, err = layout.ParseDisplayMode("tree")
	require.ErrorIs(t, err, layout.ErrUnknownMode)
}

func TestRegionHelpers(t *testing.T) {
	raw := layout.RawBlock(b(4), b(2), b(10))
	assert.True(t, raw.Consumes())
	assert.Equal(t, b(6), raw.End())
	assert.Equal(t, b(12), raw.VirtEnd())
	assert.False(t, raw.Nests())

	marker := layout.CommentMarker(b(4), b(2), "hi", false, b(10), bitoff.Zero)
	assert.False(t, marker.Consumes())
	assert.False(t, marker.Nests())
	marker.IndentLength = b(2)
	assert.True(t, marker.Nests())

	assert.Equal(t, "bits", layout.KindBits.String())
	assert.Equal(t, "Kind(9)", layout.Kind(9).String())
}

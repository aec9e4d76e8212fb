package view_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hexlayout/layout"
	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/document"
	"github.com/joshuapare/hexlayout/layout/view"
)

type recordingSink struct {
	calls [][]layout.Region
}

func (s *recordingSink) ReplaceRegions(regions []layout.Region) {
	s.calls = append(s.calls, regions)
}

func newDoc(t *testing.T) *document.Document {
	t.Helper()
	d := document.New(bitoff.Bytes(16))
	require.NoError(t, d.AddComment(bitoff.Bytes(4), bitoff.Bytes(4), "header"))
	return d
}

func TestRepopulateDeliversLayout(t *testing.T) {
	sink := &recordingSink{}
	v := view.New(newDoc(t), sink, view.Options{InlineMode: layout.FullIndent})

	assert.Empty(t, v.Regions())
	v.Repopulate()

	require.Len(t, sink.calls, 1)
	assert.Len(t, sink.calls[0], 4)
	assert.Equal(t, sink.calls[0], v.Regions())
}

func TestFreezeCoalescesRequests(t *testing.T) {
	sink := &recordingSink{}
	v := view.New(newDoc(t), sink, view.Options{})

	v.Freeze()
	v.Repopulate()
	v.SetInlineCommentMode(layout.Short)
	v.SetDisplayMode(layout.VirtualView)
	assert.True(t, v.Pending())
	assert.Empty(t, sink.calls)

	v.Thaw()
	assert.False(t, v.Pending())
	require.Len(t, sink.calls, 1)

	regions := sink.calls[0]
	require.NotEmpty(t, regions)
	assert.True(t, regions[0].Synthetic)
	require.Len(t, regions, 4)
	assert.Equal(t, layout.KindComment, regions[2].Kind)
	assert.True(t, regions[2].Truncate)
}

func TestNestedFreeze(t *testing.T) {
	sink := &recordingSink{}
	v := view.New(newDoc(t), sink, view.Options{})

	v.Freeze()
	v.Freeze()
	v.Repopulate()
	v.Thaw()
	assert.True(t, v.Frozen())
	assert.Empty(t, sink.calls)

	v.Thaw()
	assert.False(t, v.Frozen())
	assert.Len(t, sink.calls, 1)
}

func TestThawWithoutPendingDoesNothing(t *testing.T) {
	sink := &recordingSink{}
	v := view.New(newDoc(t), sink, view.Options{})

	v.Thaw()
	v.Freeze()
	v.Thaw()
	assert.Empty(t, sink.calls)
}

func TestSettersSkipUnchangedModes(t *testing.T) {
	sink := &recordingSink{}
	v := view.New(newDoc(t), sink, view.Options{InlineMode: layout.Full, Display: layout.FileView})

	v.SetInlineCommentMode(layout.Full)
	v.SetDisplayMode(layout.FileView)
	assert.Empty(t, sink.calls)

	v.SetInlineCommentMode(layout.Hidden)
	require.Len(t, sink.calls, 1)
	assert.Equal(t, layout.Hidden, v.InlineCommentMode())
	for _, r := range sink.calls[0] {
		assert.NotEqual(t, layout.KindComment, r.Kind)
	}
}

func TestCompileIsLogged(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	v := view.New(newDoc(t), view.SinkFunc(func([]layout.Region) {}), view.Options{Logger: log})
	v.Repopulate()

	assert.Contains(t, out.String(), "layout compiled")
	assert.Contains(t, out.String(), "regions=")
	assert.Contains(t, out.String(), "display=file")
}

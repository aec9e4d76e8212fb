package comments_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hexlayout/layout/bitoff"
	"github.com/joshuapare/hexlayout/layout/comments"
)

func key(off, length int64) comments.Key {
	return comments.Key{Offset: bitoff.Bytes(off), Length: bitoff.Bytes(length)}
}

func mustInsert(t *testing.T, tree *comments.Tree, k comments.Key, text string) comments.NodeID {
	t.Helper()
	id, err := tree.Insert(k, text)
	require.NoError(t, err)
	return id
}

// preorder returns the texts of all nodes in walk order.
func preorder(tree *comments.Tree) []string {
	var out []string
	tree.Walk(func(id comments.NodeID) bool {
		out = append(out, tree.Text(id))
		return true
	})
	return out
}

func TestInsertNestsInsideContainer(t *testing.T) {
	tree := comments.New()
	outer := mustInsert(t, tree, key(0, 100), "outer")
	inner := mustInsert(t, tree, key(10, 5), "inner")

	assert.Equal(t, outer, tree.FirstRoot())
	assert.Equal(t, inner, tree.FirstChild(outer))
	assert.Equal(t, outer, tree.Parent(inner))
	require.NoError(t, tree.Validate())
}

func TestInsertAdoptsContainedSiblings(t *testing.T) {
	tree := comments.New()
	mustInsert(t, tree, key(12, 2), "b")
	mustInsert(t, tree, key(2, 3), "a")
	mustInsert(t, tree, key(50, 1), "c")
	outer := mustInsert(t, tree, key(0, 20), "outer")

	assert.Equal(t, outer, tree.FirstRoot())
	assert.Equal(t, []string{"outer", "a", "b", "c"}, preorder(tree))

	c, ok := tree.Lookup(key(50, 1))
	require.True(t, ok)
	assert.Equal(t, comments.None, tree.Parent(c))
	assert.Equal(t, 4, tree.Len())
	require.NoError(t, tree.Validate())
}

func TestInsertOrdersSameOffsetLongestFirst(t *testing.T) {
	tree := comments.New()
	mustInsert(t, tree, key(4, 0), "zero")
	mustInsert(t, tree, key(4, 2), "short")
	mustInsert(t, tree, key(4, 8), "long")

	assert.Equal(t, []string{"long", "short", "zero"}, preorder(tree))
	require.NoError(t, tree.Validate())
}

func TestInsertIdenticalKeysKeepInsertionOrder(t *testing.T) {
	tree := comments.New()
	first := mustInsert(t, tree, key(8, 0), "first")
	second := mustInsert(t, tree, key(8, 0), "second")

	assert.Equal(t, []string{"first", "second"}, preorder(tree))
	assert.Equal(t, first, tree.Parent(second))

	id, ok := tree.Lookup(key(8, 0))
	require.True(t, ok)
	assert.Equal(t, first, id)
}

func TestZeroLengthAtEndIsNotContained(t *testing.T) {
	tree := comments.New()
	mustInsert(t, tree, key(0, 4), "range")
	end := mustInsert(t, tree, key(4, 0), "end")

	assert.Equal(t, comments.None, tree.Parent(end))
	assert.Equal(t, []string{"range", "end"}, preorder(tree))
}

func TestInsertRejectsPartialOverlap(t *testing.T) {
	tree := comments.New()
	mustInsert(t, tree, key(2, 4), "a")

	_, err := tree.Insert(key(4, 4), "b")
	require.ErrorIs(t, err, comments.ErrOverlap)

	_, err = tree.Insert(comments.Key{Offset: bitoff.Zero, Length: bitoff.Bits(-1)}, "neg")
	require.ErrorIs(t, err, comments.ErrInvalidKey)

	assert.Equal(t, 1, tree.Len())
}

func TestEraseSplicesChildren(t *testing.T) {
	tree := comments.New()
	mustInsert(t, tree, key(0, 20), "outer")
	mustInsert(t, tree, key(2, 2), "a")
	mustInsert(t, tree, key(8, 2), "b")
	mustInsert(t, tree, key(30, 1), "after")

	require.True(t, tree.Erase(key(0, 20)))
	assert.False(t, tree.Erase(key(0, 20)))

	assert.Equal(t, []string{"a", "b", "after"}, preorder(tree))
	assert.Equal(t, 3, tree.Len())
	require.NoError(t, tree.Validate())

	// freed slot is reused
	id := mustInsert(t, tree, key(0, 40), "new outer")
	assert.Equal(t, comments.NodeID(0), id)
	assert.Equal(t, []string{"new outer", "a", "b", "after"}, preorder(tree))
	require.NoError(t, tree.Validate())
}

func TestFindContaining(t *testing.T) {
	tree := comments.New()
	outer := mustInsert(t, tree, key(0, 20), "outer")
	inner := mustInsert(t, tree, key(4, 4), "inner")
	marker := mustInsert(t, tree, key(6, 0), "marker")

	tests := []struct {
		name   string
		pos    bitoff.BitOffset
		want   comments.NodeID
		wantOK bool
	}{
		{"outer only", bitoff.Bytes(1), outer, true},
		{"inner", bitoff.Bytes(5), inner, true},
		{"zero-length marker", bitoff.Bytes(6), marker, true},
		{"bit inside inner", bitoff.New(7, 3), inner, true},
		{"past end", bitoff.Bytes(20), comments.None, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tree.FindContaining(tt.pos)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNodeSnapshot(t *testing.T) {
	tree := comments.New()
	id := mustInsert(t, tree, key(3, 1), "hello")

	n := tree.Node(id)
	assert.Equal(t, id, n.ID)
	assert.Equal(t, key(3, 1), n.Key)
	assert.Equal(t, "hello", n.Text)
	assert.Equal(t, comments.None, n.Parent)
	assert.Equal(t, comments.None, n.FirstChild)
	assert.Equal(t, comments.None, n.NextSibling)
	assert.Equal(t, bitoff.Bytes(4), n.Key.End())
}

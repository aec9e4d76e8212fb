// Package comments stores the document's comment annotations as an ordered
// forest keyed by (offset, length).
//
// Nodes live in an arena and refer to each other by NodeID, so parent,
// first-child and next-sibling links are plain indices. Insert keeps the
// forest invariants (containment, ascending sibling order) by construction.
package comments

import (
	"errors"
	"fmt"
	"slices"

	"github.com/joshuapare/hexlayout/layout/bitoff"
)

var (
	// ErrInvalidKey indicates a key with a negative offset or length.
	ErrInvalidKey = errors.New("comments: invalid key")
	// ErrOverlap indicates a key partially overlaps an existing comment.
	ErrOverlap = errors.New("comments: partial overlap with existing comment")
	// ErrMalformed indicates the forest invariants do not hold.
	ErrMalformed = errors.New("comments: malformed tree")
)

// NodeID addresses a node in the arena.
type NodeID int32

// None is the NodeID returned when there is no such node.
const None NodeID = -1

// Key identifies a comment by its position and extent.
type Key struct {
	Offset bitoff.BitOffset
	Length bitoff.BitOffset
}

// End returns Offset+Length.
func (k Key) End() bitoff.BitOffset { return k.Offset.Add(k.Length) }

// Contains reports whether c nests inside k.
//
// A zero-length key only contains an identical key. A zero-length c is
// contained when it starts inside [k.Offset, k.End()).
func (k Key) Contains(c Key) bool {
	switch {
	case k.Length.IsZero():
		return k == c
	case c.Length.IsZero():
		return k.Offset.LessEq(c.Offset) && c.Offset.Less(k.End())
	default:
		return k.Offset.LessEq(c.Offset) && c.End().LessEq(k.End())
	}
}

// ContainsPoint reports whether the position p falls inside k. A zero-length
// key covers exactly its own offset.
func (k Key) ContainsPoint(p bitoff.BitOffset) bool {
	if k.Length.IsZero() {
		return k.Offset == p
	}
	return k.Offset.LessEq(p) && p.Less(k.End())
}

func (k Key) overlaps(c Key) bool {
	if k.Length.IsZero() || c.Length.IsZero() {
		return false
	}
	return k.Offset.Less(c.End()) && c.Offset.Less(k.End())
}

// before reports whether a sorts before b among siblings: ascending offset,
// longer first at equal offsets.
func before(a, b Key) bool {
	if c := a.Offset.Cmp(b.Offset); c != 0 {
		return c < 0
	}
	return b.Length.Less(a.Length)
}

func (k Key) String() string {
	return fmt.Sprintf("[%s+%s]", k.Offset, k.Length)
}

type node struct {
	key         Key
	text        string
	parent      NodeID
	firstChild  NodeID
	nextSibling NodeID
	live        bool
}

// Node is a read-only snapshot of one comment.
type Node struct {
	ID          NodeID
	Key         Key
	Text        string
	Parent      NodeID
	FirstChild  NodeID
	NextSibling NodeID
}

// Tree is the comment forest. The zero value is not usable; call New.
type Tree struct {
	nodes     []node
	free      []NodeID
	firstRoot NodeID
	count     int
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{firstRoot: None}
}

// Len returns the number of comments in the tree.
func (t *Tree) Len() int { return t.count }

// FirstRoot returns the first root node, or None for an empty tree.
func (t *Tree) FirstRoot() NodeID { return t.firstRoot }

// Key returns the key of id.
func (t *Tree) Key(id NodeID) Key { return t.nodes[id].key }

// Text returns the display text of id.
func (t *Tree) Text(id NodeID) string { return t.nodes[id].text }

// Parent returns the parent of id, or None for a root.
func (t *Tree) Parent(id NodeID) NodeID { return t.nodes[id].parent }

// FirstChild returns the first child of id, or None.
func (t *Tree) FirstChild(id NodeID) NodeID { return t.nodes[id].firstChild }

// NextSibling returns the next sibling of id, or None.
func (t *Tree) NextSibling(id NodeID) NodeID { return t.nodes[id].nextSibling }

// Node returns a snapshot of id.
func (t *Tree) Node(id NodeID) Node {
	n := &t.nodes[id]
	return Node{
		ID:          id,
		Key:         n.key,
		Text:        n.text,
		Parent:      n.parent,
		FirstChild:  n.firstChild,
		NextSibling: n.nextSibling,
	}
}

func (t *Tree) firstChildOf(parent NodeID) NodeID {
	if parent == None {
		return t.firstRoot
	}
	return t.nodes[parent].firstChild
}

func (t *Tree) setFirstChild(parent, child NodeID) {
	if parent == None {
		t.firstRoot = child
		return
	}
	t.nodes[parent].firstChild = child
}

func (t *Tree) children(parent NodeID) []NodeID {
	var ids []NodeID
	for c := t.firstChildOf(parent); c != None; c = t.nodes[c].nextSibling {
		ids = append(ids, c)
	}
	return ids
}

// relink rebuilds parent's child list from ids.
func (t *Tree) relink(parent NodeID, ids []NodeID) {
	if len(ids) == 0 {
		t.setFirstChild(parent, None)
		return
	}
	t.setFirstChild(parent, ids[0])
	for i, id := range ids {
		t.nodes[id].parent = parent
		if i+1 < len(ids) {
			t.nodes[id].nextSibling = ids[i+1]
		} else {
			t.nodes[id].nextSibling = None
		}
	}
}

func (t *Tree) alloc(key Key, text string) NodeID {
	n := node{
		key:         key,
		text:        text,
		parent:      None,
		firstChild:  None,
		nextSibling: None,
		live:        true,
	}
	if len(t.free) > 0 {
		id := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		t.nodes[id] = n
		return id
	}
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Insert adds a comment and returns its NodeID.
//
// The new node is placed under the deepest existing node that contains it,
// and adopts any siblings it contains. A key identical to an existing one is
// nested under the earlier insertion, so identical keys keep insertion order.
func (t *Tree) Insert(key Key, text string) (NodeID, error) {
	if key.Offset.Less(bitoff.Zero) || key.Length.Less(bitoff.Zero) {
		return None, fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}

	parent := None
	for {
		next := None
		for c := t.firstChildOf(parent); c != None; c = t.nodes[c].nextSibling {
			if t.nodes[c].key.Contains(key) {
				next = c
				break
			}
		}
		if next == None {
			break
		}
		parent = next
	}

	siblings := t.children(parent)

	var kept, adopted []NodeID
	for _, s := range siblings {
		sk := t.nodes[s].key
		switch {
		case key.Contains(sk):
			adopted = append(adopted, s)
		case key.overlaps(sk):
			return None, fmt.Errorf("%w: %s overlaps %s", ErrOverlap, key, sk)
		default:
			kept = append(kept, s)
		}
	}

	id := t.alloc(key, text)

	pos := len(kept)
	for i, s := range kept {
		if before(key, t.nodes[s].key) {
			pos = i
			break
		}
	}
	kept = slices.Insert(kept, pos, id)

	t.relink(parent, kept)
	t.relink(id, adopted)
	t.count++

	return id, nil
}

// Lookup returns the first node, in tree order, with exactly key.
func (t *Tree) Lookup(key Key) (NodeID, bool) {
	parent := None
	for {
		next := None
		for c := t.firstChildOf(parent); c != None; c = t.nodes[c].nextSibling {
			ck := t.nodes[c].key
			if ck == key {
				return c, true
			}
			if ck.Contains(key) {
				next = c
				break
			}
		}
		if next == None {
			return None, false
		}
		parent = next
	}
}

// Erase removes the first node with exactly key. Its children take its place
// in the parent's child list.
func (t *Tree) Erase(key Key) bool {
	id, ok := t.Lookup(key)
	if !ok {
		return false
	}

	parent := t.nodes[id].parent
	var ids []NodeID
	for _, s := range t.children(parent) {
		if s == id {
			ids = append(ids, t.children(id)...)
			continue
		}
		ids = append(ids, s)
	}
	t.relink(parent, ids)

	t.nodes[id] = node{parent: None, firstChild: None, nextSibling: None}
	t.free = append(t.free, id)
	t.count--
	return true
}

// FindContaining returns the most specific node covering the position p.
func (t *Tree) FindContaining(p bitoff.BitOffset) (NodeID, bool) {
	found := None
	parent := None
	for {
		next := None
		for c := t.firstChildOf(parent); c != None; c = t.nodes[c].nextSibling {
			ck := t.nodes[c].key
			if p.Less(ck.Offset) {
				break
			}
			if ck.ContainsPoint(p) {
				next = c
				break
			}
		}
		if next == None {
			return found, found != None
		}
		found = next
		parent = next
	}
}

// Walk calls fn for every node in pre-order until fn returns false.
func (t *Tree) Walk(fn func(id NodeID) bool) {
	for id := t.firstRoot; id != None; id = t.Next(id) {
		if !fn(id) {
			return
		}
	}
}

// Validate checks ordering and containment across the whole forest.
func (t *Tree) Validate() error {
	seen := 0
	var check func(parent NodeID) error
	check = func(parent NodeID) error {
		prev := None
		for c := t.firstChildOf(parent); c != None; c = t.nodes[c].nextSibling {
			n := &t.nodes[c]
			if !n.live {
				return fmt.Errorf("%w: node %d is not live", ErrMalformed, c)
			}
			if n.parent != parent {
				return fmt.Errorf("%w: node %d has parent %d, expected %d", ErrMalformed, c, n.parent, parent)
			}
			if parent != None && !t.nodes[parent].key.Contains(n.key) {
				return fmt.Errorf("%w: %s not inside parent %s", ErrMalformed, n.key, t.nodes[parent].key)
			}
			if prev != None && before(n.key, t.nodes[prev].key) {
				return fmt.Errorf("%w: %s sorted after %s", ErrMalformed, n.key, t.nodes[prev].key)
			}
			seen++
			if seen > t.count {
				return fmt.Errorf("%w: cycle detected", ErrMalformed)
			}
			if err := check(c); err != nil {
				return err
			}
			prev = c
		}
		return nil
	}
	if err := check(None); err != nil {
		return err
	}
	if seen != t.count {
		return fmt.Errorf("%w: reached %d of %d nodes", ErrMalformed, seen, t.count)
	}
	return nil
}

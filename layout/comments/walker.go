package comments

import "github.com/joshuapare/hexlayout/layout/bitoff"

// Next returns the pre-order successor of id: its first child, otherwise
// the next sibling of the nearest ancestor (or itself) that has one.
func (t *Tree) Next(id NodeID) NodeID {
	if c := t.nodes[id].firstChild; c != None {
		return c
	}
	for id != None {
		if s := t.nodes[id].nextSibling; s != None {
			return s
		}
		id = t.nodes[id].parent
	}
	return None
}

// skip moves past id and its whole subtree.
func (t *Tree) skip(id NodeID) NodeID {
	for id != None {
		if s := t.nodes[id].nextSibling; s != None {
			return s
		}
		id = t.nodes[id].parent
	}
	return None
}

// FirstAtOrAfter returns the first node in pre-order whose offset is at or
// after start, or None.
//
// Subtrees of nodes starting before start are entered only when the node
// extends past start, so a child beginning at or after start inside an
// enclosing comment that began earlier is never skipped.
func (t *Tree) FirstAtOrAfter(start bitoff.BitOffset) NodeID {
	id := t.firstRoot
	for id != None {
		n := &t.nodes[id]
		if start.LessEq(n.key.Offset) {
			return id
		}
		if n.firstChild != None && start.Less(n.key.End()) {
			id = n.firstChild
			continue
		}
		id = t.skip(id)
	}
	return None
}

package treeindex

import "github.com/ServusDei/bitmem/bitops"

// Slot is the placement of a linear address within the implicit tree.
type Slot struct {
	// Node is the node index along the selected side.
	Node uint64
	// Side selects the tree half: 0 = left, 1 = right.
	Side uint64
}

// Index folds the slot into a single flat metadata position. Because
// SlotOf is injective and Side is a single bit, the fold is injective
// too.
func (s Slot) Index() uint64 {
	return s.Node<<1 | s.Side
}

// SlotOf computes the tree slot of a linear address.
//
// For a tree of N levels there are 2^N - 1 node indices on either side,
// so with k = floor(log2(address >> 1)) the node index is
//
//	2*2^k - 2 + (address >> 1) - side*2^k
//
// The two addresses whose upper bits are zero land on the node slots
// nearest the root.
func SlotOf(address uint64) Slot {
	side := address & 1
	node := address >> 1
	if node == 0 {
		return Slot{Node: side, Side: side}
	}

	k := bitops.Log2Floor(node)
	return Slot{
		Node: (2 << k) - 2 + node - side*(1<<k),
		Side: side,
	}
}

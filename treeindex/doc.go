// Package treeindex maps linear addresses onto slots of an implicit
// complete binary tree.
//
// Bit 0 of an address selects the tree side (0 = left, 1 = right); the
// remaining bits select a node along that side. The mapping is a
// bijection over the address domain, so per-slot metadata can live in a
// flat array instead of a pointer-linked tree.
package treeindex

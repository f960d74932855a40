package bptree

import (
	"github.com/ssargent/bptreedb/pkg/kverrors"
	"github.com/ssargent/bptreedb/pkg/recordfile"
)

// Snapshot is a neutral (no encoding tags) tree-shape description used to
// hand the tree structure to pkg/persist without an import cycle; persist
// owns the JSON schema and field names (spec.md §6: "file_pointer" for a
// leaf's file id).
type Snapshot struct {
	IsLeaf   bool
	N        int
	Keys     []int32
	FileID   string
	Children []*Snapshot
}

// Snapshot walks the tree and returns its current shape.
func (t *Tree) Snapshot() *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshotNode(t.root)
}

func snapshotNode(n *node) *Snapshot {
	s := &Snapshot{
		IsLeaf: n.isLeaf,
		N:      len(n.keys),
		Keys:   append([]int32(nil), n.keys...),
		FileID: n.fileID,
	}
	for _, c := range n.children {
		s.Children = append(s.Children, snapshotNode(c))
	}
	return s
}

// Restore rebuilds a Tree from a Snapshot previously produced by
// Snapshot(), re-attaching parent pointers and relinking the leaf chain
// by a pre-order traversal, per spec.md §4.4's reload algorithm.
func Restore(order int, snap *Snapshot, rfs *recordfile.Store, newFileID func() string) (*Tree, error) {
	root, err := buildNode(snap, nil)
	if err != nil {
		return nil, err
	}
	t := &Tree{root: root, order: order, rfs: rfs, newFileID: newFileID}
	relinkLeaves(t)
	return t, nil
}

func buildNode(snap *Snapshot, parent *node) (*node, error) {
	n := &node{isLeaf: snap.IsLeaf, parent: parent}
	n.keys = append([]int32(nil), snap.Keys...)

	if snap.IsLeaf {
		n.fileID = snap.FileID
		if len(snap.Children) != 0 {
			return nil, kverrors.New(kverrors.Corruption, "bptree: restore: leaf node carries children")
		}
		return n, nil
	}

	if len(snap.Children) != len(n.keys)+1 {
		return nil, kverrors.Newf(kverrors.Corruption,
			"bptree: restore: node has %d keys but %d children", len(n.keys), len(snap.Children))
	}
	n.children = make([]*node, len(snap.Children))
	for i, cs := range snap.Children {
		c, err := buildNode(cs, n)
		if err != nil {
			return nil, err
		}
		n.children[i] = c
	}
	return n, nil
}

// relinkLeaves rebuilds the leaf next-chain by a pre-order traversal,
// since the chain itself is not part of the persisted shape.
func relinkLeaves(t *Tree) {
	var leaves []*node
	var walk func(n *node)
	walk = func(n *node) {
		if n.isLeaf {
			leaves = append(leaves, n)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)

	for i := 0; i+1 < len(leaves); i++ {
		leaves[i].next = leaves[i+1]
	}
}

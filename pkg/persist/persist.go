// Package persist implements the Index Persister: JSON serialization of
// a bptree.Tree's skeleton to/from <dataset>/index.json, grounded on
// pkg/index/manager.go's Save/Load pair and on the field names used by
// the original implementation's modules/persister.c (node_to_json /
// json_to_node), which names a leaf's file id "file_pointer" in the
// wire format even though it is called file_id everywhere else.
package persist

import (
	"encoding/json"
	"os"

	"github.com/ssargent/bptreedb/pkg/bptree"
	"github.com/ssargent/bptreedb/pkg/kverrors"
	"github.com/ssargent/bptreedb/pkg/recordfile"
)

// doc is the top-level index.json document.
type doc struct {
	T    int      `json:"T"`
	Root *wireNode `json:"root"`
}

// wireNode mirrors spec.md §6's abbreviated Node schema exactly.
type wireNode struct {
	IsLeaf     bool        `json:"is_leaf"`
	N          int         `json:"n"`
	Keys       []int32     `json:"keys"`
	FilePointer *string    `json:"file_pointer,omitempty"`
	Children   []*wireNode `json:"children,omitempty"`
}

func toWire(s *bptree.Snapshot) *wireNode {
	w := &wireNode{
		IsLeaf: s.IsLeaf,
		N:      s.N,
		Keys:   s.Keys,
	}
	if s.IsLeaf {
		fid := s.FileID
		w.FilePointer = &fid
	}
	for _, c := range s.Children {
		w.Children = append(w.Children, toWire(c))
	}
	return w
}

func fromWire(w *wireNode) (*bptree.Snapshot, error) {
	if w == nil {
		return nil, kverrors.New(kverrors.Corruption, "persist: nil node in document")
	}
	s := &bptree.Snapshot{
		IsLeaf: w.IsLeaf,
		N:      w.N,
		Keys:   append([]int32(nil), w.Keys...),
	}
	if w.IsLeaf {
		if w.FilePointer == nil {
			return nil, kverrors.New(kverrors.Corruption, "persist: leaf node missing file_pointer")
		}
		s.FileID = *w.FilePointer
		if len(w.Children) != 0 {
			return nil, kverrors.New(kverrors.Corruption, "persist: leaf node carries children")
		}
		return s, nil
	}

	if len(w.Children) != w.N+1 {
		return nil, kverrors.Newf(kverrors.Corruption,
			"persist: node has n=%d but %d children", w.N, len(w.Children))
	}
	for _, cw := range w.Children {
		cs, err := fromWire(cw)
		if err != nil {
			return nil, err
		}
		s.Children = append(s.Children, cs)
	}
	return s, nil
}

// Save writes the tree's current shape to path as index.json, via a
// plain write — spec.md §4.4 does not require temp-and-rename here,
// unlike record files.
func Save(path string, order int, tree *bptree.Tree) error {
	d := doc{T: order, Root: toWire(tree.Snapshot())}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return kverrors.Wrap(kverrors.IOFailure, "persist: marshal index", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return kverrors.Wrap(kverrors.IOFailure, "persist: write "+path, err)
	}
	return nil
}

// Load reads path and reconstructs a *bptree.Tree bound to rfs, failing
// with a Corruption-kinded error on malformed JSON, a missing T/root, or
// mismatched child counts, per spec.md §4.4.
func Load(path string, rfs *recordfile.Store, newFileID func() string) (*bptree.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kverrors.Wrap(kverrors.IOFailure, "persist: read "+path, err)
	}

	var d doc
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, kverrors.Wrap(kverrors.Corruption, "persist: parse "+path, err)
	}
	if d.T == 0 || d.Root == nil {
		return nil, kverrors.New(kverrors.Corruption, "persist: document missing T or root")
	}

	snap, err := fromWire(d.Root)
	if err != nil {
		return nil, err
	}

	return bptree.Restore(d.T, snap, rfs, newFileID)
}

// Package bptree implements the B+ tree engine: an in-memory index of
// int32 keys whose leaves bind to record files in pkg/recordfile.
//
// Generalized from the teacher's []byte-keyed, KSUID-valued tree in
// bptree.go: the split/promote machinery is the same shape, but keys are
// fixed-width int32s, leaf payloads are record-file ids instead of
// ksuid.KSUID values, and locking is a single tree-level sync.RWMutex
// rather than per-node latch coupling (see DESIGN.md).
package bptree

// node is one B+ tree node. Internal nodes have len(children) ==
// len(keys)+1 and an empty fileID; leaves have fileID set, nil children, and
// are threaded together via next for range scans.
type node struct {
	isLeaf   bool
	keys     []int32
	children []*node
	fileID   string
	next     *node
	parent   *node
}

func newLeaf(fileID string) *node {
	return &node{isLeaf: true, fileID: fileID}
}

func newInternal() *node {
	return &node{isLeaf: false}
}

// findChildIndex returns the index of the child to descend into for key,
// using the strict less-than rule: children[i] covers keys < keys[i],
// the last child covers keys >= keys[len(keys)-1].
func findChildIndex(n *node, key int32) int {
	i := 0
	for i < len(n.keys) && key >= n.keys[i] {
		i++
	}
	return i
}

// childIndex returns the index of child within parent's children slice,
// or -1 if not found.
func childIndex(parent, child *node) int {
	for i, c := range parent.children {
		if c == child {
			return i
		}
	}
	return -1
}

// insertKeySorted inserts key at its sorted position in n.keys (leaf use
// only) if not already present, returning the insertion index and whether
// a new key was added (false means key already existed at that index).
func insertKeySorted(keys []int32, key int32) (out []int32, idx int, added bool) {
	i := 0
	for i < len(keys) && keys[i] < key {
		i++
	}
	if i < len(keys) && keys[i] == key {
		return keys, i, false
	}
	out = make([]int32, len(keys)+1)
	copy(out, keys[:i])
	out[i] = key
	copy(out[i+1:], keys[i:])
	return out, i, true
}

package bptree

// Insert upserts (key, line) into the tree, splitting leaves and internal
// nodes bottom-up as they overflow order-1 keys — grounded on the
// teacher's Insert/splitLeaf/insertKeyInParent/splitInternalNode chain in
// bptree.go, generalized from []byte/ksuid.KSUID to int32/file_id.
func (t *Tree) Insert(key int32, line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	leaf := t.descend(key)
	if err := t.rfs.WriteLine(leaf.fileID, key, line); err != nil {
		return err
	}

	leaf.keys, _, _ = insertKeySorted(leaf.keys, key)

	if len(leaf.keys) <= t.order-1 {
		return nil
	}
	return t.splitLeaf(leaf)
}

// splitLeaf splits an overflowing leaf into two, migrating the upper half
// of its records to a freshly allocated record file via RFS.MoveLines,
// then promotes the new leaf's first key into the parent.
func (t *Tree) splitLeaf(leaf *node) error {
	mid := len(leaf.keys) / 2
	upperKeys := append([]int32(nil), leaf.keys[mid:]...)

	newFid := t.newFileID()
	if err := t.rfs.CreateFile(newFid); err != nil {
		return err
	}
	if err := t.rfs.MoveLines(leaf.fileID, newFid, upperKeys); err != nil {
		return err
	}

	newLeafNode := newLeaf(newFid)
	newLeafNode.keys = upperKeys
	newLeafNode.next = leaf.next
	newLeafNode.parent = leaf.parent
	leaf.next = newLeafNode
	leaf.keys = leaf.keys[:mid]

	return t.insertIntoParent(leaf, upperKeys[0], newLeafNode)
}

// insertIntoParent links right into left's parent under separator key,
// creating a new root if left had none, then splits the parent if it now
// overflows.
func (t *Tree) insertIntoParent(left *node, sepKey int32, right *node) error {
	parent := left.parent
	if parent == nil {
		newRoot := newInternal()
		newRoot.keys = []int32{sepKey}
		newRoot.children = []*node{left, right}
		left.parent = newRoot
		right.parent = newRoot
		t.root = newRoot
		return nil
	}

	idx := childIndex(parent, left)
	parent.keys = insertAt(parent.keys, idx, sepKey)
	parent.children = insertChildAt(parent.children, idx+1, right)
	right.parent = parent

	if len(parent.keys) <= t.order-1 {
		return nil
	}
	return t.splitInternal(parent)
}

// splitInternal splits an overflowing internal node, pushing its median
// key up into the parent (not duplicated into either half, per standard
// B+ tree internal-node split).
func (t *Tree) splitInternal(n *node) error {
	mid := len(n.keys) / 2
	upKey := n.keys[mid]

	right := newInternal()
	right.keys = append([]int32(nil), n.keys[mid+1:]...)
	right.children = append([]*node(nil), n.children[mid+1:]...)
	for _, c := range right.children {
		c.parent = right
	}
	right.parent = n.parent

	n.keys = n.keys[:mid]
	n.children = n.children[:mid+1]

	return t.insertIntoParent(n, upKey, right)
}

func insertAt(keys []int32, idx int, key int32) []int32 {
	out := make([]int32, len(keys)+1)
	copy(out, keys[:idx])
	out[idx] = key
	copy(out[idx+1:], keys[idx:])
	return out
}

func insertChildAt(children []*node, idx int, child *node) []*node {
	out := make([]*node, len(children)+1)
	copy(out, children[:idx])
	out[idx] = child
	copy(out[idx+1:], children[idx:])
	return out
}

func removeAt(keys []int32, idx int) []int32 {
	out := make([]int32, 0, len(keys)-1)
	out = append(out, keys[:idx]...)
	out = append(out, keys[idx+1:]...)
	return out
}

func removeChildAt(children []*node, idx int) []*node {
	out := make([]*node, 0, len(children)-1)
	out = append(out, children[:idx]...)
	out = append(out, children[idx+1:]...)
	return out
}

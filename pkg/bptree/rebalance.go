package bptree

import "github.com/ssargent/bptreedb/pkg/kverrors"

// Delete removes key from the tree, rebalancing via borrow-then-merge as
// nodes underflow below minKeys(order) — a capability the teacher's
// Delete does not have (it only removes the key from its leaf); this is
// the full textbook B+ tree deletion the spec requires.
func (t *Tree) Delete(key int32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	leaf := t.descend(key)
	pos := -1
	for i, k := range leaf.keys {
		if k == key {
			pos = i
			break
		}
	}
	if pos < 0 {
		return kverrors.Newf(kverrors.NotFound, "bptree: key %d not found", key)
	}

	if err := t.rfs.DeleteLines(leaf.fileID, []int32{key}); err != nil {
		return err
	}
	wasMin := pos == 0
	leaf.keys = removeAt(leaf.keys, pos)

	if leaf.parent == nil {
		// Root leaf: no underflow floor, no separator to fix up.
		return nil
	}

	if wasMin && len(leaf.keys) > 0 {
		t.updateAncestorSeparator(leaf, leaf.keys[0])
	}

	return t.checkUnderflow(leaf)
}

// updateAncestorSeparator walks up from child, rewriting the first
// ancestor separator key for which child's subtree is anything but the
// leftmost child — the standard B+ tree fix-up after removing a leaf's
// smallest key.
func (t *Tree) updateAncestorSeparator(child *node, newKey int32) {
	n := child
	for n.parent != nil {
		p := n.parent
		idx := childIndex(p, n)
		if idx > 0 {
			p.keys[idx-1] = newKey
			return
		}
		n = p
	}
}

// checkUnderflow handles root-demotion when n is the root, returns
// immediately if n still meets the minimum key count, and otherwise
// rebalances n against a sibling.
func (t *Tree) checkUnderflow(n *node) error {
	if n.parent == nil {
		if !n.isLeaf && len(n.keys) == 0 {
			newRoot := n.children[0]
			newRoot.parent = nil
			t.root = newRoot
		}
		return nil
	}

	if len(n.keys) >= minKeys(t.order) {
		return nil
	}
	return t.rebalance(n)
}

// rebalance borrows a key from a sibling if one has spare capacity,
// otherwise merges n into a sibling, preferring the left sibling in both
// cases to match the teacher's left-leaning conventions elsewhere.
func (t *Tree) rebalance(n *node) error {
	p := n.parent
	idx := childIndex(p, n)

	var left, right *node
	if idx > 0 {
		left = p.children[idx-1]
	}
	if idx < len(p.children)-1 {
		right = p.children[idx+1]
	}

	min := minKeys(t.order)
	if left != nil && len(left.keys) > min {
		return t.borrowFromLeft(p, idx, left, n)
	}
	if right != nil && len(right.keys) > min {
		return t.borrowFromRight(p, idx, n, right)
	}
	if left != nil {
		if err := t.mergeNodes(p, idx-1, left, n); err != nil {
			return err
		}
	} else if right != nil {
		if err := t.mergeNodes(p, idx, n, right); err != nil {
			return err
		}
	}
	return t.checkUnderflow(p)
}

// borrowFromLeft moves left's last key/child into n as its new first
// entry, updating the separator at parent.keys[idx-1].
func (t *Tree) borrowFromLeft(p *node, idx int, left, n *node) error {
	if n.isLeaf {
		borrowKey := left.keys[len(left.keys)-1]
		if err := t.rfs.MoveLines(left.fileID, n.fileID, []int32{borrowKey}); err != nil {
			return err
		}
		left.keys = left.keys[:len(left.keys)-1]
		n.keys = append([]int32{borrowKey}, n.keys...)
		p.keys[idx-1] = n.keys[0]
		return nil
	}

	borrowKey := left.keys[len(left.keys)-1]
	borrowChild := left.children[len(left.children)-1]
	left.keys = left.keys[:len(left.keys)-1]
	left.children = left.children[:len(left.children)-1]

	n.keys = append([]int32{p.keys[idx-1]}, n.keys...)
	n.children = append([]*node{borrowChild}, n.children...)
	borrowChild.parent = n
	p.keys[idx-1] = borrowKey
	return nil
}

// borrowFromRight moves right's first key/child into n as its new last
// entry, updating the separator at parent.keys[idx].
func (t *Tree) borrowFromRight(p *node, idx int, n, right *node) error {
	if n.isLeaf {
		borrowKey := right.keys[0]
		if err := t.rfs.MoveLines(right.fileID, n.fileID, []int32{borrowKey}); err != nil {
			return err
		}
		right.keys = right.keys[1:]
		n.keys = append(n.keys, borrowKey)
		p.keys[idx] = right.keys[0]
		return nil
	}

	borrowKey := right.keys[0]
	borrowChild := right.children[0]
	right.keys = right.keys[1:]
	right.children = right.children[1:]

	n.keys = append(n.keys, p.keys[idx])
	n.children = append(n.children, borrowChild)
	borrowChild.parent = n
	p.keys[idx] = borrowKey
	return nil
}

// mergeNodes folds right into left, removing the separator at
// parent.keys[sepIdx] and the now-redundant parent.children[sepIdx+1].
// Used both when n merges with its left sibling (mergeNodes(p, idx-1,
// left, n)) and with its right sibling (mergeNodes(p, idx, n, right));
// the index arithmetic is identical either way since left/right here
// just name "the two nodes becoming one", not which one is n.
func (t *Tree) mergeNodes(p *node, sepIdx int, left, right *node) error {
	if left.isLeaf {
		if err := t.rfs.MergeFiles(left.fileID, right.fileID); err != nil {
			return err
		}
		left.keys = append(left.keys, right.keys...)
		left.next = right.next
	} else {
		left.keys = append(left.keys, p.keys[sepIdx])
		left.keys = append(left.keys, right.keys...)
		for _, c := range right.children {
			c.parent = left
		}
		left.children = append(left.children, right.children...)
	}

	p.keys = removeAt(p.keys, sepIdx)
	p.children = removeChildAt(p.children, sepIdx+1)
	return nil
}

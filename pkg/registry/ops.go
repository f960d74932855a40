package registry

import (
	"github.com/ssargent/bptreedb/pkg/recordfile"
)

// KeyLine is a single (key, line) pair, the unit of bulk_insert/range.
type KeyLine struct {
	Key  int32
	Line string
}

// BulkInsert resolves name, upserts every pair in order, persists the
// resulting shape, and returns the count inserted — matching spec.md
// §6's bulk_insert(name, [(key, line)...]) -> count_inserted | error.
func (r *Registry) BulkInsert(name string, pairs []KeyLine) (int, error) {
	h, err := r.Resolve(name)
	if err != nil {
		return 0, err
	}
	defer h.Release()

	for i, p := range pairs {
		if err := h.Tree.Insert(p.Key, p.Line); err != nil {
			return i, err
		}
	}
	if err := r.Persist(name); err != nil {
		return len(pairs), err
	}
	return len(pairs), nil
}

// Search resolves name and looks up key.
func (r *Registry) Search(name string, key int32) (string, bool, error) {
	h, err := r.Resolve(name)
	if err != nil {
		return "", false, err
	}
	defer h.Release()

	return h.Tree.Search(key)
}

// Range resolves name and returns every entry with lo <= key <= hi.
func (r *Registry) Range(name string, lo, hi int32) ([]recordfile.Entry, error) {
	h, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	return h.Tree.Range(lo, hi)
}

// DeleteKey resolves name, deletes key, and persists the resulting shape.
func (r *Registry) DeleteKey(name string, key int32) error {
	h, err := r.Resolve(name)
	if err != nil {
		return err
	}
	defer h.Release()

	if err := h.Tree.Delete(key); err != nil {
		return err
	}
	return r.Persist(name)
}

// Names returns every known dataset name, loaded or not (diagnostic
// listing helper, not part of the core operation surface).
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	return names
}

// Exists reports whether name is a known dataset, loaded or not. Create
// performs its own duplicate check under the lock and does not use it.
func (r *Registry) Exists(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[name]
	return ok
}

// Package registry implements the Dataset Registry: a bounded, lazily
// loaded table of datasets, each backed by a bptree.Tree and its
// recordfile.Store, with a background evictor that unloads idle trees.
//
// Adapted from the teacher's pkg/index/manager.go IndexManager (map of
// name to handle guarded by a sync.RWMutex, GetOrCreateIndex-style
// resolve) and from pkg/bptree/bptree.go's StartCheckpoint/StopCheckpoint
// ticker-and-done-channel pattern, repurposed here as the idle evictor.
// Directory layout and the datasets.txt catalog follow
// modules/application.c's create_dataset/delete_dataset.
package registry

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/bptreedb/pkg/bptree"
	"github.com/ssargent/bptreedb/pkg/kverrors"
	"github.com/ssargent/bptreedb/pkg/persist"
	"github.com/ssargent/bptreedb/pkg/recordfile"
)

const catalogFile = "datasets.txt"

// Config tunes the registry, adapted into pkg/config's Registry block.
type Config struct {
	BaseDir       string
	MaxDatasets   int
	IdleTimeout   time.Duration
	EvictInterval time.Duration
	DefaultOrder  int
}

type entry struct {
	name         string
	order        int
	tree         *bptree.Tree
	rfs          *recordfile.Store
	loaded       bool
	lastAccessed time.Time
	refCount     int
}

// Registry holds every known dataset name and, for those currently
// loaded, their in-memory tree handle.
type Registry struct {
	mu          sync.Mutex
	cfg         Config
	entries     map[string]*entry
	evictTicker *time.Ticker
	evictDone   chan struct{}
}

// Open loads the dataset catalog from <baseDir>/datasets.txt, leaving
// every entry unloaded, per spec.md §4.5 "list load on startup".
func Open(cfg Config) (*Registry, error) {
	if cfg.MaxDatasets <= 0 {
		cfg.MaxDatasets = 100
	}
	if cfg.DefaultOrder < 3 {
		cfg.DefaultOrder = 32
	}

	r := &Registry{cfg: cfg, entries: make(map[string]*entry)}

	names, err := readCatalog(cfg.BaseDir)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		r.entries[name] = &entry{name: name}
	}
	return r, nil
}

func readCatalog(baseDir string) ([]string, error) {
	path := filepath.Join(baseDir, catalogFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, kverrors.Wrap(kverrors.IOFailure, "registry: open catalog", err)
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line != "" {
			names = append(names, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, kverrors.Wrap(kverrors.IOFailure, "registry: scan catalog", err)
	}
	return names, nil
}

func writeCatalog(baseDir string, names []string) error {
	path := filepath.Join(baseDir, catalogFile)
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return kverrors.Wrap(kverrors.IOFailure, "registry: create temp catalog", err)
	}
	w := bufio.NewWriter(f)
	for _, n := range names {
		if _, err := w.WriteString(n + "\n"); err != nil {
			f.Close()
			os.Remove(tmp)
			return kverrors.Wrap(kverrors.IOFailure, "registry: write catalog", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return kverrors.Wrap(kverrors.IOFailure, "registry: flush catalog", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return kverrors.Wrap(kverrors.IOFailure, "registry: close temp catalog", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return kverrors.Wrap(kverrors.IOFailure, "registry: rename catalog", err)
	}
	return nil
}

func (r *Registry) datasetDir(name string) string {
	return filepath.Join(r.cfg.BaseDir, name)
}

func (r *Registry) dataDir(name string) string {
	return filepath.Join(r.datasetDir(name), "data")
}

func (r *Registry) indexPath(name string) string {
	return filepath.Join(r.datasetDir(name), "index.json")
}

func newFileID() string {
	return ksuid.New().String()
}

// Create makes a new dataset with the given order, writing its on-disk
// layout, an empty persisted tree, and appending it to the catalog.
func (r *Registry) Create(name string, order int) error {
	if name == "" {
		return kverrors.New(kverrors.InvalidArgument, "registry: empty dataset name")
	}
	if order < 3 {
		return kverrors.Newf(kverrors.InvalidArgument, "registry: order %d must be >= 3", order)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return kverrors.Newf(kverrors.AlreadyExists, "registry: dataset %q already exists", name)
	}
	if len(r.entries) >= r.cfg.MaxDatasets {
		return kverrors.Newf(kverrors.CapacityExceeded, "registry: at capacity (%d datasets)", r.cfg.MaxDatasets)
	}

	if err := os.MkdirAll(r.dataDir(name), 0750); err != nil {
		return kverrors.Wrap(kverrors.IOFailure, "registry: create dataset dir", err)
	}

	rfs := recordfile.New(r.dataDir(name))
	tree, err := bptree.New(order, rfs, newFileID)
	if err != nil {
		return err
	}
	if err := persist.Save(r.indexPath(name), order, tree); err != nil {
		return err
	}

	e := &entry{name: name, order: order, tree: tree, rfs: rfs, loaded: true, lastAccessed: time.Now()}
	r.entries[name] = e

	if err := r.appendCatalogLocked(name); err != nil {
		return err
	}
	return nil
}

func (r *Registry) appendCatalogLocked(name string) error {
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	return writeCatalog(r.cfg.BaseDir, names)
}

// Delete removes a dataset's on-disk state entirely and drops it from
// the catalog.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return kverrors.Newf(kverrors.NotFound, "registry: dataset %q not found", name)
	}
	delete(r.entries, name)

	if err := os.RemoveAll(r.datasetDir(name)); err != nil {
		return kverrors.Wrap(kverrors.IOFailure, "registry: remove dataset dir", err)
	}

	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	return writeCatalog(r.cfg.BaseDir, names)
}

// Handle is a resolved, reference-counted tree handle. Release must be
// called exactly once when the caller is done using the tree, so the
// evictor cannot unload it mid-use.
type Handle struct {
	Tree    *bptree.Tree
	release func()
}

// Release returns the handle's reference, allowing the evictor to
// reclaim the tree once idle.
func (h *Handle) Release() {
	h.release()
}

// Resolve looks up name, lazily loading its tree from disk if needed,
// and returns a reference-counted Handle. The registry lock is held only
// long enough to find-or-load the entry and bump its reference count;
// it is released before the caller does any tree work.
func (r *Registry) Resolve(name string) (*Handle, error) {
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		r.mu.Unlock()
		return nil, kverrors.Newf(kverrors.NotFound, "registry: dataset %q not found", name)
	}

	if !e.loaded {
		rfs := recordfile.New(r.dataDir(name))
		tree, err := persist.Load(r.indexPath(name), rfs, newFileID)
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		e.tree = tree
		e.rfs = rfs
		e.loaded = true
	}

	e.lastAccessed = time.Now()
	e.refCount++
	tree := e.tree
	r.mu.Unlock()

	return &Handle{
		Tree: tree,
		release: func() {
			r.mu.Lock()
			e.refCount--
			r.mu.Unlock()
		},
	}, nil
}

// Persist writes name's current tree shape back to its index.json, e.g.
// after a batch of mutations.
func (r *Registry) Persist(name string) error {
	r.mu.Lock()
	e, ok := r.entries[name]
	r.mu.Unlock()
	if !ok {
		return kverrors.Newf(kverrors.NotFound, "registry: dataset %q not found", name)
	}
	if !e.loaded {
		return nil
	}
	return persist.Save(r.indexPath(name), e.order, e.tree)
}

// LoadedCount reports how many datasets currently have their tree
// loaded in memory.
func (r *Registry) LoadedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entries {
		if e.loaded {
			n++
		}
	}
	return n
}

// StartEvictor launches the background idle-eviction goroutine. It is
// safe to call at most once per Registry.
func (r *Registry) StartEvictor() {
	r.evictTicker = time.NewTicker(r.cfg.EvictInterval)
	r.evictDone = make(chan struct{})

	go func() {
		for {
			select {
			case <-r.evictTicker.C:
				r.evictIdle()
			case <-r.evictDone:
				return
			}
		}
	}()
}

// StopEvictor halts the background eviction goroutine started by
// StartEvictor.
func (r *Registry) StopEvictor() {
	if r.evictTicker == nil {
		return
	}
	r.evictTicker.Stop()
	close(r.evictDone)
}

func (r *Registry) evictIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, e := range r.entries {
		if !e.loaded || e.refCount > 0 {
			continue
		}
		if now.Sub(e.lastAccessed) > r.cfg.IdleTimeout {
			e.tree = nil
			e.rfs = nil
			e.loaded = false
		}
	}
}

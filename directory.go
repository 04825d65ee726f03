package memfs

import "github.com/google/memoryfs/attr"

// Directory owns a mapping from lookup-key to child Entry. Insertion
// order is preserved in order so enumeration and listdir are
// deterministic even though children is a map.
type Directory struct {
	entryBase

	children map[string]Entry
	order    []string // lookup keys, insertion order
}

func newDirectory(fs *Filesystem, name string) *Directory {
	d := &Directory{children: make(map[string]Entry)}
	d.entryBase = newEntryBase(fs, KindDirectory, name)
	installViews(fs, d, &d.entryBase, nil)
	return d
}

func (d *Directory) Basic() attr.Basic {
	v, _ := d.View(viewBasic)
	return v.(attr.Basic)
}

// Get returns the child stored under key, if any.
// LOCKS_REQUIRED(d.mu) (a read lock suffices).
func (d *Directory) Get(key string) (Entry, bool) {
	e, ok := d.children[key]
	return e, ok
}

// GetOrFail is Get but returns ErrNotFound, wrapped with path, on a miss.
func (d *Directory) GetOrFail(key, path string) (Entry, error) {
	e, ok := d.Get(key)
	if !ok {
		return nil, pathErr("lookup", path, ErrNotFound)
	}
	return e, nil
}

// Add inserts a new child under key, failing with ErrAlreadyExists if the
// key is already taken. EXCLUSIVE_LOCKS_REQUIRED(d.mu)
func (d *Directory) Add(key string, e Entry) error {
	if _, exists := d.children[key]; exists {
		return ErrAlreadyExists
	}
	d.children[key] = e
	d.order = append(d.order, key)
	d.touch()
	return nil
}

// Remove deletes the mapping for key, if present.
// EXCLUSIVE_LOCKS_REQUIRED(d.mu)
func (d *Directory) Remove(key string) (Entry, bool) {
	e, ok := d.children[key]
	if !ok {
		return nil, false
	}
	delete(d.children, key)
	for i, k := range d.order {
		if k == key {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	d.touch()
	return e, true
}

// CheckEmpty fails with ErrDirectoryNotEmpty if d has any children.
func (d *Directory) CheckEmpty(path string) error {
	if len(d.children) > 0 {
		return pathErr("delete", path, ErrDirectoryNotEmpty)
	}
	return nil
}

// DirEntryInfo is one snapshot entry returned by a directory stream.
type DirEntryInfo struct {
	Name string
	Kind Kind
}

// DirStream is a snapshot-based, restartable-on-reopen directory listing:
// it holds no lock on the directory once created, so concurrent
// mutations are visible only in the sense that a fresh NewDirectoryStream
// call re-snapshots; this one stays fixed for its lifetime.
type DirStream struct {
	entries []DirEntryInfo
	idx     int
}

// Next returns the next entry, or ok=false when exhausted.
func (s *DirStream) Next() (DirEntryInfo, bool) {
	if s.idx >= len(s.entries) {
		return DirEntryInfo{}, false
	}
	e := s.entries[s.idx]
	s.idx++
	return e, true
}

// Reset rewinds the stream to its start without re-snapshotting.
func (s *DirStream) Reset() { s.idx = 0 }

// snapshot takes the directory read lock and copies out a stream of its
// current children in insertion order, optionally filtered.
func (d *Directory) snapshot(filter func(name string) bool) *DirStream {
	guard := d.ReadLock()
	defer guard.Release()

	entries := make([]DirEntryInfo, 0, len(d.order))
	for _, key := range d.order {
		child := d.children[key]
		if filter != nil && !filter(child.Name()) {
			continue
		}
		entries = append(entries, DirEntryInfo{Name: child.Name(), Kind: child.Kind()})
	}
	return &DirStream{entries: entries}
}

package memfs

import (
	"sync"
	"time"

	"github.com/google/memoryfs/attr"
	"github.com/google/memoryfs/clock"
)

// Kind tags the three concrete entry variants. Go has no sealed class
// hierarchy, so the abstract "Entry" of the data model becomes an
// interface implemented by File, Directory, and Symlink, each embedding
// entryBase for the fields and locking every variant shares.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Entry is a node in the tree: a File, Directory, or Symlink. All methods
// other than Kind/Name are guarded by the entry's own read-write lock;
// callers must hold the appropriate lock (via ReadLock/WriteLock) before
// calling anything that touches mutable state.
type Entry interface {
	Kind() Kind
	Name() string
	ReadLock() Guard
	WriteLock() Guard
	Basic() attr.Basic
	View(name string) (any, bool)
	CheckAccess(modes ...attr.AccessMode) error

	generation() uint64
	touch()
	setName(string)
}

// entryBase carries the state common to every entry: the per-node lock,
// the display name, the three timestamps, the attribute views configured
// for this filesystem, and a generation counter bumped on every mutation
// (observability only, not a correctness invariant).
type entryBase struct {
	mu sync.RWMutex

	fs    *Filesystem
	kind  Kind
	name  string // store-transformed display name
	clock clock.Clock

	created  time.Time
	modified time.Time
	accessed time.Time

	gen uint64

	views map[string]any
}

func newEntryBase(fs *Filesystem, kind Kind, name string) entryBase {
	now := fs.now()
	return entryBase{
		fs:       fs,
		kind:     kind,
		name:     name,
		clock:    fs.clock,
		created:  now,
		modified: now,
		accessed: now,
		views:    make(map[string]any),
	}
}

func (e *entryBase) Kind() Kind { return e.kind }

func (e *entryBase) Name() string { return e.name }

// ReadLock acquires the entry's lock for reading and returns a token that
// releases it. Multiple readers may hold it concurrently.
func (e *entryBase) ReadLock() Guard {
	e.mu.RLock()
	return Guard{release: e.mu.RUnlock}
}

// WriteLock acquires the entry's lock exclusively.
func (e *entryBase) WriteLock() Guard {
	e.mu.Lock()
	return Guard{release: e.mu.Unlock}
}

// touch bumps last-modified (and the generation counter) to the current
// time. EXCLUSIVE_LOCKS_REQUIRED(e.mu).
func (e *entryBase) touch() {
	now := e.clock.Now()
	e.modified = now
	e.gen++
}

// markAccessed updates last-access time. EXCLUSIVE_LOCKS_REQUIRED(e.mu):
// callers must hold the write lock, not merely a read lock, since this
// mutates shared state.
func (e *entryBase) markAccessed() {
	e.accessed = e.clock.Now()
}

func (e *entryBase) generation() uint64 { return e.gen }

// setName updates the store-transformed display name, used by Move to
// rename an entry as it's relinked under a new parent/key.
// EXCLUSIVE_LOCKS_REQUIRED(e.mu)
func (e *entryBase) setName(n string) {
	e.name = n
	e.gen++
}

// CheckAccess accepts any of {Read, Write, Execute} and rejects anything
// else with ErrNotSupported, per the safe default called out for
// checkAccess in the design notes.
func (e *entryBase) CheckAccess(modes ...attr.AccessMode) error {
	for _, m := range modes {
		switch m {
		case attr.Read, attr.Write, attr.Execute:
		default:
			return ErrNotSupported
		}
	}
	return nil
}

// View returns the configured attribute-view instance for name, if any
// view by that name was configured for this filesystem.
func (e *entryBase) View(name string) (any, bool) {
	v, ok := e.views[name]
	return v, ok
}

// setTimes sets all three timestamps atomically. Any nil argument fails
// ErrInvalidArgument and leaves all three unchanged (nulls are not
// "leave unchanged" for that one field, per the boundary behavior that
// a null timestamp is an invalid argument, not a partial update).
func (e *entryBase) setTimes(created, modified, accessed *time.Time) error {
	if created == nil || modified == nil || accessed == nil {
		return ErrInvalidArgument
	}
	e.created = *created
	e.modified = *modified
	e.accessed = *accessed
	e.gen++
	return nil
}

package memfs

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/memoryfs/attr"
	"github.com/google/memoryfs/clock"
	"github.com/google/memoryfs/logger"
	"github.com/google/memoryfs/metrics"
	"github.com/google/memoryfs/principal"
)

const defaultBlockSize = 4096

// Filesystem is the entry tree: a roots map plus the shared state
// (ordering lock, transforms, clock, metrics) every operation needs. The
// zero Filesystem is not usable; construct one with New.
type Filesystem struct {
	sep   string
	roots map[string]*Directory // keyed by lookup(root key)
	// rootKeys maps a lookup(root key) back to the original root string,
	// so parsing can recover which root a caller named.
	rootKeys map[string]string

	storeTransform  Transform
	lookupTransform Transform
	collator        Collator

	views    map[string]bool
	umask    attr.PermissionSet
	readOnly bool

	blockSz       int
	maxTotalBytes int64
	totalBytes    int64 // atomic

	clock   clock.Clock
	log     *slog.Logger
	metrics *metrics.Metrics

	order *orderingLock

	principals   *principal.Registry
	defaultOwner principal.Principal
	defaultGroup principal.Principal

	workDirRoot     string
	workDirElements []string

	closed atomic.Bool
}

// New constructs a Filesystem with one empty root directory per
// cfg.Roots.
func New(cfg Config) (*Filesystem, error) {
	if len(cfg.Roots) == 0 {
		return nil, ErrInvalidArgument
	}

	fs := &Filesystem{
		sep:             cfg.Separator,
		roots:           make(map[string]*Directory),
		rootKeys:        make(map[string]string),
		storeTransform:  cfg.StoreTransform,
		lookupTransform: cfg.LookupTransform,
		collator:        cfg.Collator,
		views:           make(map[string]bool),
		umask:           cfg.Umask,
		readOnly:        cfg.ReadOnly,
		blockSz:         cfg.BlockSize,
		maxTotalBytes:   cfg.MaxTotalBytes,
		clock:           cfg.Clock,
		log:             cfg.Logger,
		metrics:         cfg.Metrics,
		order:           &orderingLock{},
		principals:      principal.NewRegistry(),
		defaultOwner:    cfg.DefaultOwner,
		defaultGroup:    cfg.DefaultGroup,
	}

	if fs.sep == "" {
		fs.sep = "/"
	}
	if fs.storeTransform == nil {
		fs.storeTransform = IdentityTransform
	}
	if fs.lookupTransform == nil {
		fs.lookupTransform = IdentityTransform
	}
	if fs.collator == nil {
		fs.collator = DefaultCollator
	}
	if fs.blockSz <= 0 {
		fs.blockSz = defaultBlockSize
	}
	if fs.clock == nil {
		fs.clock = clock.RealClock{}
	}
	if fs.log == nil {
		fs.log = logger.Nop()
	}
	if fs.metrics == nil {
		fs.metrics = metrics.New()
	}
	for _, v := range cfg.AdditionalViews {
		fs.views[v] = true
	}

	for _, root := range cfg.Roots {
		key := fs.lookupTransform(root)
		if _, exists := fs.rootKeys[key]; exists {
			return nil, ErrInvalidArgument
		}
		fs.rootKeys[key] = root
		fs.roots[key] = newDirectory(fs, root)
	}

	if cfg.WorkingDirectory != "" {
		root, elements, absolute := fs.splitPath(cfg.WorkingDirectory)
		if !absolute {
			return nil, ErrInvalidArgument
		}
		fs.workDirRoot = root
		fs.workDirElements = elements
	}

	return fs, nil
}

func (fs *Filesystem) now() time.Time { return fs.clock.Now() }

func (fs *Filesystem) blockSize() int { return fs.blockSz }

func (fs *Filesystem) hasView(name string) bool {
	if name == viewBasic {
		return true
	}
	return fs.views[name]
}

// initialPermissions returns the starting permission set for a newly
// created entry of the given kind, with Umask bits cleared.
func (fs *Filesystem) initialPermissions(k Kind) attr.PermissionSet {
	var full attr.PermissionSet
	if k == KindDirectory {
		full = attr.PermissionSet(attr.OwnerRead | attr.OwnerWrite | attr.OwnerExecute |
			attr.GroupRead | attr.GroupExecute | attr.OthersRead | attr.OthersExecute)
	} else {
		full = attr.PermissionSet(attr.OwnerRead | attr.OwnerWrite |
			attr.GroupRead | attr.OthersRead)
	}
	return attr.PermissionSet(uint16(full) &^ uint16(fs.umask))
}

// Roots returns the configured root key strings.
func (fs *Filesystem) Roots() []string {
	out := make([]string, 0, len(fs.rootKeys))
	for _, r := range fs.rootKeys {
		out = append(out, r)
	}
	return out
}

// Separator returns the configured path separator.
func (fs *Filesystem) Separator() string { return fs.sep }

// IsReadOnly reports whether mutations on fs always fail with
// ErrReadOnly.
func (fs *Filesystem) IsReadOnly() bool { return fs.readOnly }

// IsOpen reports whether Close has not yet been called.
func (fs *Filesystem) IsOpen() bool { return !fs.closed.Load() }

// Close marks the filesystem closed. It is idempotent and silent;
// operations after Close fail with ErrClosed.
func (fs *Filesystem) Close() error {
	fs.closed.Store(true)
	return nil
}

func (fs *Filesystem) checkOpen() error {
	if fs.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (fs *Filesystem) checkWritable() error {
	if fs.readOnly {
		return ErrReadOnly
	}
	return nil
}

// reserveBytes accounts for n additional bytes against MaxTotalBytes,
// failing with ErrNoSpace if that would exceed the ceiling. n may be
// negative to release previously reserved bytes.
func (fs *Filesystem) reserveBytes(n int64) error {
	if fs.maxTotalBytes <= 0 {
		atomic.AddInt64(&fs.totalBytes, n)
		fs.metrics.BytesAllocated.Add(float64(n))
		return nil
	}
	for {
		cur := atomic.LoadInt64(&fs.totalBytes)
		next := cur + n
		if n > 0 && next > fs.maxTotalBytes {
			return ErrNoSpace
		}
		if atomic.CompareAndSwapInt64(&fs.totalBytes, cur, next) {
			fs.metrics.BytesAllocated.Add(float64(n))
			return nil
		}
	}
}

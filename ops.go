package memfs

import (
	"strings"

	"github.com/google/memoryfs/attr"
	"github.com/google/memoryfs/matcher"
	"github.com/google/memoryfs/mpath"
)

// Join concatenates path elements with the configured separator, the
// library's stand-in for a Path Parser's getPath(first, more...).
func (fs *Filesystem) Join(first string, more ...string) string {
	parts := append([]string{first}, more...)
	return strings.Join(parts, fs.sep)
}

// PathMatcher compiles a "syntax:pattern" path matcher.
func (fs *Filesystem) PathMatcher(syntaxAndPattern string) (matcher.PathMatcher, error) {
	return matcher.New(syntaxAndPattern)
}

func (fs *Filesystem) precheck(path string) (root string, elements []string, err error) {
	if err := fs.checkOpen(); err != nil {
		return "", nil, err
	}
	root, elements, err = fs.absoluteElements(path)
	return root, elements, err
}

// InitialAttribute is one attribute to apply atomically when an entry
// is created, addressed the same way as SetAttribute's attrName
// ("view:attribute"; no colon addresses the basic view). Supplying any
// of the basic-view timestamps (lastAccessTime, creationTime,
// lastModifiedTime) fails ErrUnsupportedInitialAttribute: those are
// always stamped from the clock at creation, never from caller input.
type InitialAttribute struct {
	Name  string
	Value any
}

// applyInitialAttributes applies attrs to a freshly built, not-yet-
// linked entry. Since nothing else can reach the entry before it is
// added to its parent directory, this only needs the per-view locking
// applyAttribute already does, not any extra synchronization.
func (fs *Filesystem) applyInitialAttributes(e Entry, attrs []InitialAttribute) error {
	for _, a := range attrs {
		viewName, attrName := splitAttributeName(a.Name)
		if viewName == viewBasic {
			switch attrName {
			case "lastAccessTime", "creationTime", "lastModifiedTime":
				return ErrUnsupportedInitialAttribute
			}
		}
		view, ok := e.View(viewName)
		if !ok {
			return ErrNotSupported
		}
		if err := applyAttribute(view, attrName, a.Value); err != nil {
			return err
		}
	}
	return nil
}

// CreateDirectory creates an empty directory at path; its parent must
// already exist. attrs are applied atomically at creation; see
// InitialAttribute.
func (fs *Filesystem) CreateDirectory(path string, attrs ...InitialAttribute) (err error) {
	defer func() { fs.metrics.ObserveOp("create_directory", err) }()

	if err = fs.checkWritable(); err != nil {
		return pathErr("mkdir", path, err)
	}
	root, elements, err := fs.precheck(path)
	if err != nil {
		return pathErr("mkdir", path, err)
	}
	if len(elements) == 0 {
		return pathErr("mkdir", path, ErrAlreadyExists)
	}

	parent, res, err := fs.resolveParent(root, elements, true)
	if err != nil {
		return pathErr("mkdir", path, err)
	}
	defer res.guards.release()

	name := lastElement(elements)
	key := fs.lookupTransform(name)
	child := newDirectory(fs, fs.storeTransform(name))
	if err := fs.applyInitialAttributes(child, attrs); err != nil {
		return pathErr("mkdir", path, err)
	}
	if err := parent.Add(key, child); err != nil {
		return pathErr("mkdir", path, err)
	}
	return nil
}

// CreateSymlink creates a symlink at path pointing at target. target is
// interpreted relative to path's parent unless it names one of the
// filesystem's own roots.
func (fs *Filesystem) CreateSymlink(path, target string, attrs ...InitialAttribute) (err error) {
	defer func() { fs.metrics.ObserveOp("create_symlink", err) }()

	if err = fs.checkWritable(); err != nil {
		return pathErr("symlink", path, err)
	}
	root, elements, err := fs.precheck(path)
	if err != nil {
		return pathErr("symlink", path, err)
	}
	if len(elements) == 0 {
		return pathErr("symlink", path, ErrAlreadyExists)
	}

	targetRoot, targetElements, targetAbsolute := fs.splitPath(target)

	parent, res, err := fs.resolveParent(root, elements, true)
	if err != nil {
		return pathErr("symlink", path, err)
	}
	defer res.guards.release()

	name := lastElement(elements)
	key := fs.lookupTransform(name)
	child := newSymlink(fs, fs.storeTransform(name), targetRoot, targetElements, targetAbsolute)
	if err := fs.applyInitialAttributes(child, attrs); err != nil {
		return pathErr("symlink", path, err)
	}
	if err := parent.Add(key, child); err != nil {
		return pathErr("symlink", path, err)
	}
	return nil
}

// OpenFile opens or creates a file at path per opts.Mode, returning a
// channel positioned at the start of the file (or at end-of-file, for
// Append). An existing symlink at path is followed to the file it
// resolves to.
func (fs *Filesystem) OpenFile(path string, opts OpenOptions, attrs ...InitialAttribute) (ch *FileChannel, err error) {
	defer func() { fs.metrics.ObserveOp("open_file", err) }()

	mode := opts.Mode
	writes := mode.has(Write) || mode.has(Append) || mode.has(Create) || mode.has(CreateNew) || mode.has(TruncateExisting)
	if writes {
		if err = fs.checkWritable(); err != nil {
			return nil, pathErr("open", path, err)
		}
	}

	root, elements, err := fs.precheck(path)
	if err != nil {
		return nil, pathErr("open", path, err)
	}
	if len(elements) == 0 {
		return nil, pathErr("open", path, ErrInvalidArgument)
	}

	parent, parentRes, err := fs.resolveParent(root, elements, true)
	if err != nil {
		return nil, pathErr("open", path, err)
	}
	defer parentRes.guards.release()

	name := lastElement(elements)
	key := fs.lookupTransform(name)

	existing, exists := parent.Get(key)

	if mode.has(CreateNew) && exists {
		return nil, pathErr("open", path, ErrAlreadyExists)
	}
	if !exists && !mode.has(Create) && !mode.has(CreateNew) {
		return nil, pathErr("open", path, ErrNotFound)
	}
	if _, isSymlink := existing.(*Symlink); isSymlink {
		parentRes.guards.release()
		res, rerr := fs.resolve(root, elements, resolveOptions{followSymlinks: true})
		if rerr != nil {
			return nil, pathErr("open", path, rerr)
		}
		target := mpath.Join(res.names[0], fs.sep, res.names[1:])
		res.guards.release()
		return fs.OpenFile(target, opts, attrs...)
	}

	var file *File
	if exists {
		f, ok := existing.(*File)
		if !ok {
			return nil, pathErr("open", path, ErrInvalidArgument)
		}
		file = f
	} else {
		file = newFile(fs, fs.storeTransform(name))
		if err := fs.applyInitialAttributes(file, attrs); err != nil {
			return nil, pathErr("open", path, err)
		}
		if err := parent.Add(key, file); err != nil {
			return nil, pathErr("open", path, err)
		}
	}

	fguard := file.WriteLock()
	if exists && mode.has(TruncateExisting) && (mode.has(Write) || mode.has(CreateNew)) {
		file.truncateTo(0)
		file.touch()
	}
	file.openCount++
	fguard.Release()

	fs.metrics.OpenFiles.Add(1)

	ch = &FileChannel{fs: fs, file: file, mode: mode}
	if mode.has(DeleteOnClose) {
		ch.deleteOnCloseDir = parent
		ch.deleteOnCloseKey = key
	}
	if mode.has(Append) {
		ch.pos = file.size
	}
	return ch, nil
}

// NewInputStream opens path read-only.
func (fs *Filesystem) NewInputStream(path string) (*FileChannel, error) {
	return fs.OpenFile(path, OpenOptions{Mode: Read})
}

// NewOutputStream opens path for writing, creating and truncating it.
func (fs *Filesystem) NewOutputStream(path string) (*FileChannel, error) {
	return fs.OpenFile(path, OpenOptions{Mode: Write | Create | TruncateExisting})
}

// Delete removes the entry at path. Non-empty directories fail with
// ErrDirectoryNotEmpty; open files fail with ErrBusy.
func (fs *Filesystem) Delete(path string) (err error) {
	defer func() { fs.metrics.ObserveOp("delete", err) }()

	if err = fs.checkWritable(); err != nil {
		return pathErr("delete", path, err)
	}
	root, elements, err := fs.precheck(path)
	if err != nil {
		return pathErr("delete", path, err)
	}
	if len(elements) == 0 {
		return pathErr("delete", path, ErrInvalidArgument)
	}

	orderGuard := fs.order.readLock()
	defer orderGuard.Release()

	parent, parentRes, err := fs.resolveParent(root, elements, true)
	if err != nil {
		return pathErr("delete", path, err)
	}
	defer parentRes.guards.release()

	name := lastElement(elements)
	key := fs.lookupTransform(name)
	victim, ok := parent.Get(key)
	if !ok {
		return pathErr("delete", path, ErrNotFound)
	}

	vguard := victim.WriteLock()
	defer vguard.Release()

	switch v := victim.(type) {
	case *Directory:
		if err := v.CheckEmpty(path); err != nil {
			return err
		}
	case *File:
		if v.openCount > 0 {
			return pathErr("delete", path, ErrBusy)
		}
	}

	parent.Remove(key)
	if f, isFile := victim.(*File); isFile {
		f.reclaim()
	}
	return nil
}

// ReadAttributes returns the basic attribute view for path.
func (fs *Filesystem) ReadAttributes(path string, follow bool) (b attr.Basic, err error) {
	defer func() { fs.metrics.ObserveOp("read_attributes", err) }()

	root, elements, err := fs.precheck(path)
	if err != nil {
		return nil, pathErr("readAttributes", path, err)
	}

	res, err := fs.resolve(root, elements, resolveOptions{followSymlinks: follow})
	if err != nil {
		return nil, pathErr("readAttributes", path, err)
	}
	defer res.guards.release()

	v, ok := res.entry.View(viewBasic)
	if !ok {
		return nil, pathErr("readAttributes", path, ErrNotSupported)
	}
	return v.(attr.Basic), nil
}

// AttributeView returns the named attribute-view instance for path, e.g.
// "posix" or "dos". Requesting an unconfigured view fails ErrNotSupported.
func (fs *Filesystem) AttributeView(path, viewName string, follow bool) (v any, err error) {
	defer func() { fs.metrics.ObserveOp("attribute_view", err) }()

	root, elements, err := fs.precheck(path)
	if err != nil {
		return nil, pathErr("getAttributeView", path, err)
	}

	res, err := fs.resolve(root, elements, resolveOptions{followSymlinks: follow})
	if err != nil {
		return nil, pathErr("getAttributeView", path, err)
	}
	defer res.guards.release()

	view, ok := res.entry.View(viewName)
	if !ok {
		return nil, pathErr("getAttributeView", path, ErrNotSupported)
	}
	return view, nil
}

// SetAttribute sets a single named attribute on path, addressed as
// "view:attribute" (e.g. "dos:hidden", "posix:permissions"); a name
// with no ":" addresses the basic view. Fails ErrNotSupported if the
// view isn't configured on this filesystem or the name isn't one of
// its attributes.
func (fs *Filesystem) SetAttribute(path, attrName string, value any, follow bool) (err error) {
	defer func() { fs.metrics.ObserveOp("set_attribute", err) }()

	if err = fs.checkWritable(); err != nil {
		return pathErr("setAttribute", path, err)
	}
	root, elements, err := fs.precheck(path)
	if err != nil {
		return pathErr("setAttribute", path, err)
	}
	res, err := fs.resolve(root, elements, resolveOptions{followSymlinks: follow})
	if err != nil {
		return pathErr("setAttribute", path, err)
	}
	defer res.guards.release()

	viewName, name := splitAttributeName(attrName)
	view, ok := res.entry.View(viewName)
	if !ok {
		return pathErr("setAttribute", path, ErrNotSupported)
	}
	if err := applyAttribute(view, name, value); err != nil {
		return pathErr("setAttribute", path, err)
	}
	return nil
}

// CheckAccess validates that path exists and that every requested mode
// is one of {Read, Write, Execute}.
func (fs *Filesystem) CheckAccess(path string, modes ...attr.AccessMode) (err error) {
	defer func() { fs.metrics.ObserveOp("check_access", err) }()

	root, elements, err := fs.precheck(path)
	if err != nil {
		return pathErr("checkAccess", path, err)
	}
	res, err := fs.resolve(root, elements, resolveOptions{followSymlinks: true})
	if err != nil {
		return pathErr("checkAccess", path, err)
	}
	defer res.guards.release()

	return res.entry.CheckAccess(modes...)
}

// RealPath returns the resolved absolute path with each element replaced
// by its entry's stored display name.
func (fs *Filesystem) RealPath(path string, follow bool) (real string, err error) {
	defer func() { fs.metrics.ObserveOp("real_path", err) }()

	root, elements, err := fs.precheck(path)
	if err != nil {
		return "", pathErr("toRealPath", path, err)
	}
	res, err := fs.resolve(root, elements, resolveOptions{followSymlinks: follow})
	if err != nil {
		return "", pathErr("toRealPath", path, err)
	}
	defer res.guards.release()

	return mpath.Join(res.names[0], fs.sep, res.names[1:]), nil
}

// NewDirectoryStream returns a snapshot of path's children taken at call
// time, each accepted by filter (nil accepts everything).
func (fs *Filesystem) NewDirectoryStream(path string, filter func(name string) bool) (s *DirStream, err error) {
	defer func() { fs.metrics.ObserveOp("new_directory_stream", err) }()

	root, elements, err := fs.precheck(path)
	if err != nil {
		return nil, pathErr("newDirectoryStream", path, err)
	}
	res, err := fs.resolve(root, elements, resolveOptions{followSymlinks: true})
	if err != nil {
		return nil, pathErr("newDirectoryStream", path, err)
	}
	dir, ok := res.entry.(*Directory)
	res.guards.release()
	if !ok {
		return nil, pathErr("newDirectoryStream", path, ErrNotADirectory)
	}

	return dir.snapshot(filter), nil
}

// MoveOptions configures Move.
type MoveOptions struct {
	// ReplaceExisting allows Move to overwrite an existing, empty
	// destination instead of failing ErrAlreadyExists.
	ReplaceExisting bool
}

// CopyOptions configures Copy.
type CopyOptions struct {
	ReplaceExisting bool
	// Recursive allows copying a directory and its contents; without it,
	// copying a non-empty directory fails ErrInvalidArgument.
	Recursive bool
}

// isStrictlyWithin reports whether (root, elements) names a location
// strictly inside the (ancestorRoot, ancestorElements) subtree (not the
// same location), used to reject a Move/Copy destination nested inside
// its own source.
func (fs *Filesystem) isStrictlyWithin(ancestorRoot string, ancestorElements []string, root string, elements []string) bool {
	if ancestorRoot != root || len(elements) <= len(ancestorElements) {
		return false
	}
	for i, e := range ancestorElements {
		if fs.lookupTransform(e) != fs.lookupTransform(elements[i]) {
			return false
		}
	}
	return true
}

// sameEntryPath reports whether (rootA, elementsA) and (rootB,
// elementsB) name the exact same tree location.
func (fs *Filesystem) sameEntryPath(rootA string, elementsA []string, rootB string, elementsB []string) bool {
	if rootA != rootB || len(elementsA) != len(elementsB) {
		return false
	}
	for i := range elementsA {
		if fs.lookupTransform(elementsA[i]) != fs.lookupTransform(elementsB[i]) {
			return false
		}
	}
	return true
}

// restoreAfterFailedMove re-links victim back under its original
// parent after Move has already detached it from the source side but
// failed before it could attach it at the destination.
func (fs *Filesystem) restoreAfterFailedMove(rootKey string, elements []string, key string, victim Entry) {
	parent, res, err := fs.resolveParent(rootKey, elements, true)
	if err != nil {
		return
	}
	defer res.guards.release()
	_ = parent.Add(key, victim)
}

// Move relocates (and optionally renames) the entry at src to dst. Per
// the two-path operation protocol, the whole operation runs under the
// filesystem's ordering lock in write mode, serializing it against every
// other Move, Copy, and Delete so that concurrent cross-tree operations
// can never deadlock against each other's per-entry locks.
//
// The source and destination parent directories are never locked at
// the same time: the source side is resolved, detached, and released
// before the destination side is ever resolved. That holds regardless
// of whether the two paths share a parent directory (or any other
// ancestor), so there's no case where this goroutine tries to lock a
// directory it's already holding.
func (fs *Filesystem) Move(src, dst string, opts MoveOptions) (err error) {
	defer func() { fs.metrics.ObserveOp("move", err) }()

	if err = fs.checkWritable(); err != nil {
		return pathErr("move", src, err)
	}

	orderGuard := fs.order.writeLock()
	defer orderGuard.Release()

	srcRoot, srcElements, err := fs.precheck(src)
	if err != nil {
		return pathErr("move", src, err)
	}
	dstRoot, dstElements, err := fs.precheck(dst)
	if err != nil {
		return pathErr("move", dst, err)
	}
	if len(srcElements) == 0 || len(dstElements) == 0 {
		return pathErr("move", src, ErrInvalidArgument)
	}
	if fs.sameEntryPath(srcRoot, srcElements, dstRoot, dstElements) {
		return nil // source and destination name the same entry: idempotent no-op.
	}
	if fs.isStrictlyWithin(srcRoot, srcElements, dstRoot, dstElements) {
		return pathErr("move", dst, ErrInvalidArgument)
	}

	srcName := lastElement(srcElements)
	srcKey := fs.lookupTransform(srcName)

	srcParent, srcRes, err := fs.resolveParent(srcRoot, srcElements, true)
	if err != nil {
		return pathErr("move", src, err)
	}
	victim, ok := srcParent.Get(srcKey)
	if !ok {
		srcRes.guards.release()
		return pathErr("move", src, ErrNotFound)
	}
	srcParent.Remove(srcKey)
	srcRes.guards.release()

	dstName := lastElement(dstElements)
	dstKey := fs.lookupTransform(dstName)

	dstParent, dstRes, err := fs.resolveParent(dstRoot, dstElements, true)
	if err != nil {
		fs.restoreAfterFailedMove(srcRoot, srcElements, srcKey, victim)
		return pathErr("move", dst, err)
	}

	if existing, exists := dstParent.Get(dstKey); exists {
		if !opts.ReplaceExisting {
			dstRes.guards.release()
			fs.restoreAfterFailedMove(srcRoot, srcElements, srcKey, victim)
			return pathErr("move", dst, ErrAlreadyExists)
		}
		if dir, isDir := existing.(*Directory); isDir {
			if err := dir.CheckEmpty(dst); err != nil {
				dstRes.guards.release()
				fs.restoreAfterFailedMove(srcRoot, srcElements, srcKey, victim)
				return err
			}
		}
		if f, isFile := existing.(*File); isFile {
			fguard := f.ReadLock()
			busy := f.openCount > 0
			fguard.Release()
			if busy {
				dstRes.guards.release()
				fs.restoreAfterFailedMove(srcRoot, srcElements, srcKey, victim)
				return pathErr("move", dst, ErrBusy)
			}
		}
		dstParent.Remove(dstKey)
	}

	if err := dstParent.Add(dstKey, victim); err != nil {
		dstRes.guards.release()
		fs.restoreAfterFailedMove(srcRoot, srcElements, srcKey, victim)
		return pathErr("move", dst, err)
	}

	vguard := victim.WriteLock()
	victim.setName(fs.storeTransform(dstName))
	vguard.Release()

	dstRes.guards.release()
	return nil
}

// Copy duplicates the entry at src to dst. Files are deep-copied
// (block content); symlinks are copied as a new symlink with the same
// target; directories are copied recursively when opts.Recursive is
// set, otherwise only an empty directory may be copied.
//
// The source side's locks are fully released before the destination
// parent is ever resolved: cloneEntry reads everything it needs (and
// takes its own, separate per-entry locks while doing so) before
// returning, so nothing about the source needs to stay locked while
// the destination side is resolved and mutated. That means a shared or
// identical ancestor between src and dst is never locked twice by this
// goroutine.
func (fs *Filesystem) Copy(src, dst string, opts CopyOptions) (err error) {
	defer func() { fs.metrics.ObserveOp("copy", err) }()

	if err = fs.checkWritable(); err != nil {
		return pathErr("copy", src, err)
	}

	orderGuard := fs.order.writeLock()
	defer orderGuard.Release()

	srcRoot, srcElements, err := fs.precheck(src)
	if err != nil {
		return pathErr("copy", src, err)
	}
	dstRoot, dstElements, err := fs.precheck(dst)
	if err != nil {
		return pathErr("copy", dst, err)
	}
	if len(srcElements) == 0 || len(dstElements) == 0 {
		return pathErr("copy", src, ErrInvalidArgument)
	}
	if fs.isStrictlyWithin(srcRoot, srcElements, dstRoot, dstElements) {
		return pathErr("copy", dst, ErrInvalidArgument)
	}

	srcParent, srcRes, err := fs.resolveParent(srcRoot, srcElements, false)
	if err != nil {
		return pathErr("copy", src, err)
	}
	srcName := lastElement(srcElements)
	srcKey := fs.lookupTransform(srcName)
	srcEntry, ok := srcParent.Get(srcKey)
	if !ok {
		srcRes.guards.release()
		return pathErr("copy", src, ErrNotFound)
	}

	dstName := lastElement(dstElements)
	clone, err := fs.cloneEntry(srcEntry, dstName, opts)
	srcRes.guards.release()
	if err != nil {
		return pathErr("copy", dst, err)
	}

	dstParent, dstRes, err := fs.resolveParent(dstRoot, dstElements, true)
	if err != nil {
		return pathErr("copy", dst, err)
	}
	defer dstRes.guards.release()

	dstKey := fs.lookupTransform(dstName)
	if existing, exists := dstParent.Get(dstKey); exists {
		if !opts.ReplaceExisting {
			return pathErr("copy", dst, ErrAlreadyExists)
		}
		if dir, isDir := existing.(*Directory); isDir {
			if err := dir.CheckEmpty(dst); err != nil {
				return err
			}
		}
		dstParent.Remove(dstKey)
	}

	if err := dstParent.Add(dstKey, clone); err != nil {
		return pathErr("copy", dst, err)
	}
	return nil
}

// cloneEntry builds a detached copy of src named name, recursing into
// directory children when opts.Recursive is set. The returned entry has
// not yet been linked into any parent.
func (fs *Filesystem) cloneEntry(src Entry, name string, opts CopyOptions) (Entry, error) {
	storeName := fs.storeTransform(name)

	switch v := src.(type) {
	case *File:
		guard := v.ReadLock()
		defer guard.Release()
		nf := newFile(fs, storeName)
		if _, err := nf.writeAt(v.readAllBytes(), 0); err != nil {
			return nil, err
		}
		return nf, nil

	case *Symlink:
		guard := v.ReadLock()
		defer guard.Release()
		absolute, root, elements := v.Target()
		return newSymlink(fs, storeName, root, elements, absolute), nil

	case *Directory:
		guard := v.ReadLock()
		if len(v.children) > 0 && !opts.Recursive {
			guard.Release()
			return nil, ErrInvalidArgument
		}
		keys := append([]string{}, v.order...)
		children := make(map[string]Entry, len(keys))
		for _, k := range keys {
			children[k] = v.children[k]
		}
		guard.Release()

		nd := newDirectory(fs, storeName)
		for _, k := range keys {
			child := children[k]
			childClone, err := fs.cloneEntry(child, child.Name(), opts)
			if err != nil {
				return nil, err
			}
			if err := nd.Add(k, childClone); err != nil {
				return nil, err
			}
		}
		return nd, nil

	default:
		return nil, ErrNotSupported
	}
}

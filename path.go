package memfs

import "github.com/google/memoryfs/mpath"

// splitPath turns a caller-supplied path string into a root key (already
// lookup-transformed) and an element sequence (not yet transformed; each
// resolution step applies lookupTransform itself so it can be mixed with
// store-transformed display names along the way).
func (fs *Filesystem) splitPath(path string) (root string, elements []string, absolute bool) {
	rootKeys := make([]string, 0, len(fs.rootKeys))
	for _, r := range fs.rootKeys {
		rootKeys = append(rootKeys, r)
	}
	root, elements, absolute = mpath.Split(path, fs.sep, rootKeys)
	if absolute {
		root = fs.lookupTransform(root)
	}
	return root, elements, absolute
}

// resolveRootDir returns the root Directory addressed by key (already
// run through lookupTransform), or ErrNotFound.
func (fs *Filesystem) resolveRootDir(key string) (*Directory, error) {
	d, ok := fs.roots[key]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// absoluteElements resolves a possibly-relative path against the
// filesystem's configured working directory, returning an absolute
// root + element sequence.
func (fs *Filesystem) absoluteElements(path string) (root string, elements []string, err error) {
	root, elements, absolute := fs.splitPath(path)
	if absolute {
		return root, elements, nil
	}
	if fs.workDirRoot == "" {
		return "", nil, ErrInvalidArgument
	}
	combined := make([]string, 0, len(fs.workDirElements)+len(elements))
	combined = append(combined, fs.workDirElements...)
	combined = append(combined, elements...)
	return fs.workDirRoot, combined, nil
}

package memfs

// resolveOptions controls one resolve() call.
type resolveOptions struct {
	// writeTerminal requests a write lock on the terminal entry instead
	// of a read lock.
	writeTerminal bool
	// followSymlinks controls only the TERMINAL element: intermediate
	// symlinks are always followed (a path can't continue through one
	// otherwise), matching "when false, terminal symlinks are returned
	// as-is" read literally as applying just to the last element.
	followSymlinks bool
}

// resolution is what one resolve() call hands back: the terminal entry,
// the display-name chain from root to terminal (for RealPath), the root
// key the terminal was found under, and the locks acquired along the
// final leg (the caller releases these once done with entry).
type resolution struct {
	entry   Entry
	names   []string
	rootKey string
	guards  guardStack
}

// resolve walks rootKey/elements to its terminal entry, following
// symlinks per opts, and returns it still locked (guards un-released).
// On any error the locks acquired so far have already been released.
func (fs *Filesystem) resolve(rootKey string, elements []string, opts resolveOptions) (*resolution, error) {
	return fs.resolveSeen(rootKey, elements, opts, make(map[*Symlink]struct{}))
}

func (fs *Filesystem) resolveSeen(rootKey string, elements []string, opts resolveOptions, seen map[*Symlink]struct{}) (*resolution, error) {
	rootDir, err := fs.resolveRootDir(rootKey)
	if err != nil {
		return nil, err
	}

	var guards guardStack
	guards.push(rootDir.ReadLock())

	names := []string{fs.rootKeys[rootKey]}

	if len(elements) == 0 {
		if opts.writeTerminal {
			guards.release()
			guards.push(rootDir.WriteLock())
		}
		return &resolution{entry: rootDir, names: names, rootKey: rootKey, guards: guards}, nil
	}

	parent := rootDir
	var terminal Entry

	for i, elem := range elements {
		key := fs.lookupTransform(elem)
		child, ok := parent.Get(key)
		if !ok {
			guards.release()
			return nil, ErrNotFound
		}
		isLast := i == len(elements)-1

		if sym, isSymlink := child.(*Symlink); isSymlink && (opts.followSymlinks || !isLast) {
			symGuard := sym.ReadLock()
			if _, already := seen[sym]; already {
				symGuard.Release()
				guards.release()
				return nil, ErrLoop
			}
			seen[sym] = struct{}{}
			absolute, targetRoot, targetElements := sym.Target()
			symGuard.Release()
			guards.release()

			newRoot := rootKey
			var newElements []string
			if absolute {
				newRoot = fs.lookupTransform(targetRoot)
				newElements = append(append([]string{}, targetElements...), elements[i+1:]...)
			} else {
				newElements = append(append(append([]string{}, elements[:i]...), targetElements...), elements[i+1:]...)
			}
			return fs.resolveSeen(newRoot, newElements, opts, seen)
		}

		var lockGuard Guard
		if isLast && opts.writeTerminal {
			lockGuard = child.WriteLock()
		} else {
			lockGuard = child.ReadLock()
		}
		guards.push(lockGuard)
		names = append(names, child.Name())

		if !isLast {
			dir, isDir := child.(*Directory)
			if !isDir {
				guards.release()
				return nil, ErrNotADirectory
			}
			parent = dir
		} else {
			terminal = child
		}
	}

	return &resolution{entry: terminal, names: names, rootKey: rootKey, guards: guards}, nil
}

// resolveParent resolves the directory that would contain the final
// element of elements (i.e. elements[:len-1]), always following
// symlinks along the way since a parent must be a real directory. It
// fails with ErrNotADirectory if that path names something else.
func (fs *Filesystem) resolveParent(rootKey string, elements []string, write bool) (*Directory, *resolution, error) {
	parentElements := elements
	if len(elements) > 0 {
		parentElements = elements[:len(elements)-1]
	}
	res, err := fs.resolve(rootKey, parentElements, resolveOptions{writeTerminal: write, followSymlinks: true})
	if err != nil {
		return nil, nil, err
	}
	dir, ok := res.entry.(*Directory)
	if !ok {
		res.guards.release()
		return nil, nil, ErrNotADirectory
	}
	return dir, res, nil
}

func lastElement(elements []string) string {
	if len(elements) == 0 {
		return ""
	}
	return elements[len(elements)-1]
}

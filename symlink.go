package memfs

import "github.com/google/memoryfs/attr"

// Symlink owns a target path reference: an element sequence plus an
// optional root. An empty Root means the target is relative to the
// symlink's own parent directory at resolution time.
type Symlink struct {
	entryBase

	targetRoot     string
	targetElements []string
	targetAbsolute bool
}

func newSymlink(fs *Filesystem, name string, targetRoot string, targetElements []string, absolute bool) *Symlink {
	s := &Symlink{
		targetRoot:     targetRoot,
		targetElements: targetElements,
		targetAbsolute: absolute,
	}
	s.entryBase = newEntryBase(fs, KindSymlink, name)
	installViews(fs, s, &s.entryBase, nil)
	return s
}

func (s *Symlink) Basic() attr.Basic {
	v, _ := s.View(viewBasic)
	return v.(attr.Basic)
}

// Target returns the recorded target: whether it's absolute, its root
// (meaningful only if absolute), and its element sequence.
func (s *Symlink) Target() (absolute bool, root string, elements []string) {
	return s.targetAbsolute, s.targetRoot, s.targetElements
}

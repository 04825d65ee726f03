package memfs

import "github.com/google/memoryfs/attr"

// File owns its byte content as an ordered list of fixed-size blocks plus
// a logical size; the last block may be only partially used. Per
// invariant 6, len(blocks)*blockSize >= size always holds.
type File struct {
	entryBase

	blockSize int
	blocks    [][]byte
	size      int64

	openCount int
	deleted   bool // marked for deletion
}

func newFile(fs *Filesystem, name string) *File {
	f := &File{blockSize: fs.blockSize()}
	f.entryBase = newEntryBase(fs, KindFile, name)
	installViews(fs, f, &f.entryBase, f)
	return f
}

func (f *File) Basic() attr.Basic {
	v, _ := f.View(viewBasic)
	return v.(attr.Basic)
}

// blocksNeeded returns how many blocks are needed to hold n bytes.
func (f *File) blocksNeeded(n int64) int {
	if n <= 0 {
		return 0
	}
	need := int(n / int64(f.blockSize))
	if n%int64(f.blockSize) != 0 {
		need++
	}
	return need
}

// growTo extends the block list to cover size n, zero-filling new space.
// Fails with ErrNoSpace without growing if that would exceed the
// filesystem's byte ceiling. EXCLUSIVE_LOCKS_REQUIRED(f.mu)
func (f *File) growTo(n int64) error {
	need := f.blocksNeeded(n)
	addBlocks := need - len(f.blocks)
	if addBlocks > 0 {
		if err := f.fs.reserveBytes(int64(addBlocks) * int64(f.blockSize)); err != nil {
			return err
		}
		for len(f.blocks) < need {
			f.blocks = append(f.blocks, make([]byte, f.blockSize))
		}
	}
	if n > f.size {
		f.size = n
	}
	return nil
}

// truncateTo shrinks the logical size to n, releasing now-unused blocks.
// EXCLUSIVE_LOCKS_REQUIRED(f.mu)
func (f *File) truncateTo(n int64) {
	f.size = n
	need := f.blocksNeeded(n)
	if need < len(f.blocks) {
		freed := len(f.blocks) - need
		f.blocks = f.blocks[:need]
		_ = f.fs.reserveBytes(-int64(freed) * int64(f.blockSize))
	}
	// Zero the tail of the now-final block so a subsequent grow past n
	// within the same block doesn't resurrect old bytes.
	if need > 0 && need <= len(f.blocks) {
		last := f.blocks[need-1]
		offsetInLast := int(n % int64(f.blockSize))
		if offsetInLast > 0 {
			for i := offsetInLast; i < len(last); i++ {
				last[i] = 0
			}
		}
	}
}

// readAt copies min(len(p), size-off) bytes starting at off into p,
// returning the number of bytes read. Reads at or past size return 0.
// LOCKS_REQUIRED(f.mu) (a read lock suffices).
func (f *File) readAt(p []byte, off int64) int {
	if off >= f.size {
		return 0
	}
	avail := f.size - off
	n := int64(len(p))
	if n > avail {
		n = avail
	}
	var read int64
	for read < n {
		blockIdx := int((off + read) / int64(f.blockSize))
		blockOff := int((off + read) % int64(f.blockSize))
		block := f.blocks[blockIdx]
		chunk := int64(len(block) - blockOff)
		remaining := n - read
		if chunk > remaining {
			chunk = remaining
		}
		copy(p[read:read+chunk], block[blockOff:blockOff+int(chunk)])
		read += chunk
	}
	return int(read)
}

// writeAt writes p at off, growing the file (zero-filling any gap) as
// needed. EXCLUSIVE_LOCKS_REQUIRED(f.mu)
func (f *File) writeAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if end > f.size {
		if err := f.growTo(end); err != nil {
			return 0, err
		}
	}
	var written int64
	n := int64(len(p))
	for written < n {
		blockIdx := int((off + written) / int64(f.blockSize))
		blockOff := int((off + written) % int64(f.blockSize))
		block := f.blocks[blockIdx]
		chunk := int64(len(block) - blockOff)
		remaining := n - written
		if chunk > remaining {
			chunk = remaining
		}
		copy(block[blockOff:blockOff+int(chunk)], p[written:written+chunk])
		written += chunk
	}
	return int(written), nil
}

// readAllBytes copies out the file's full logical content.
// LOCKS_REQUIRED(f.mu) (a read lock suffices).
func (f *File) readAllBytes() []byte {
	buf := make([]byte, f.size)
	f.readAt(buf, 0)
	return buf
}

// reclaim discards block storage. Called on the last close of a File
// that was marked for deletion.
func (f *File) reclaim() {
	_ = f.fs.reserveBytes(-int64(len(f.blocks)) * int64(f.blockSize))
	f.blocks = nil
	f.size = 0
}

package memfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T, cfg Config) *Filesystem {
	t.Helper()
	if len(cfg.Roots) == 0 {
		cfg.Roots = []string{"/"}
	}
	fs, err := New(cfg)
	require.NoError(t, err)
	return fs
}

func TestNewRequiresAtLeastOneRoot(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewDefaultsSeparatorAndBlockSize(t *testing.T) {
	fs := newTestFS(t, Config{})
	assert.Equal(t, "/", fs.Separator())
	assert.Equal(t, defaultBlockSize, fs.blockSize())
}

func TestNewRejectsDuplicateRoots(t *testing.T) {
	_, err := New(Config{Roots: []string{"/", "/"}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRootsStartsEmpty(t *testing.T) {
	fs := newTestFS(t, Config{})

	s, err := fs.NewDirectoryStream("/", nil)
	require.NoError(t, err)
	_, ok := s.Next()
	assert.False(t, ok)
}

func TestCloseIsIdempotentAndBlocksFurtherOps(t *testing.T) {
	fs := newTestFS(t, Config{})

	require.NoError(t, fs.Close())
	require.NoError(t, fs.Close())
	assert.False(t, fs.IsOpen())

	err := fs.CreateDirectory("/a")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReadOnlyFilesystemRejectsMutation(t *testing.T) {
	fs := newTestFS(t, Config{ReadOnly: true})

	err := fs.CreateDirectory("/a")
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.True(t, fs.IsReadOnly())
}

func TestByteCeilingRejectsOversizedWrite(t *testing.T) {
	fs := newTestFS(t, Config{BlockSize: 16, MaxTotalBytes: 16})

	ch, err := fs.OpenFile("/big.txt", OpenOptions{Mode: Write | Create})
	require.NoError(t, err)
	defer ch.Close()

	_, err = ch.Write(make([]byte, 64))
	assert.ErrorIs(t, err, ErrNoSpace)
}

func TestWorkingDirectoryResolvesRelativePaths(t *testing.T) {
	fsWD, err := New(Config{Roots: []string{"/"}, WorkingDirectory: "/"})
	require.NoError(t, err)
	require.NoError(t, fsWD.CreateDirectory("relative"))

	real, err := fsWD.RealPath("relative", true)
	require.NoError(t, err)
	assert.Equal(t, "/relative", real)
}

package memfs

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/memoryfs/attr"
)

func TestCreateDirectoryNestedAndDuplicate(t *testing.T) {
	fs := newTestFS(t, Config{})

	require.NoError(t, fs.CreateDirectory("/a"))
	require.NoError(t, fs.CreateDirectory("/a/b"))

	err := fs.CreateDirectory("/a")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	err = fs.CreateDirectory("/missing/child")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateDirectoryThroughAFileFails(t *testing.T) {
	fs := newTestFS(t, Config{})
	ch, err := fs.OpenFile("/f", OpenOptions{Mode: Write | Create})
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	err = fs.CreateDirectory("/f/child")
	assert.ErrorIs(t, err, ErrNotADirectory)
}

func TestOpenFileCreateWriteReadRoundTrip(t *testing.T) {
	fs := newTestFS(t, Config{})

	ch, err := fs.OpenFile("/hello.txt", OpenOptions{Mode: Write | Create})
	require.NoError(t, err)
	n, err := ch.Write([]byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	require.NoError(t, ch.Close())

	in, err := fs.NewInputStream("/hello.txt")
	require.NoError(t, err)
	defer in.Close()

	buf, err := io.ReadAll(in)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(buf))
}

func TestOpenFileCreateNewFailsIfExists(t *testing.T) {
	fs := newTestFS(t, Config{})
	ch, err := fs.OpenFile("/f", OpenOptions{Mode: Write | CreateNew})
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	_, err = fs.OpenFile("/f", OpenOptions{Mode: Write | CreateNew})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestOpenFileWithoutCreateOnMissingFails(t *testing.T) {
	fs := newTestFS(t, Config{})
	_, err := fs.OpenFile("/missing", OpenOptions{Mode: Read})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenFileTruncateExistingResetsContent(t *testing.T) {
	fs := newTestFS(t, Config{})
	ch, err := fs.OpenFile("/f", OpenOptions{Mode: Write | Create})
	require.NoError(t, err)
	_, err = ch.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	ch2, err := fs.OpenFile("/f", OpenOptions{Mode: Write | TruncateExisting})
	require.NoError(t, err)
	assert.Equal(t, int64(0), ch2.Size())
	require.NoError(t, ch2.Close())
}

func TestOpenFileAppendAlwaysWritesAtEnd(t *testing.T) {
	fs := newTestFS(t, Config{})
	ch, err := fs.OpenFile("/f", OpenOptions{Mode: Write | Create})
	require.NoError(t, err)
	_, err = ch.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	ach, err := fs.OpenFile("/f", OpenOptions{Mode: Write | Append})
	require.NoError(t, err)
	_, err = ach.Write([]byte("def"))
	require.NoError(t, err)

	_, err = ach.Seek(0, io.SeekStart)
	assert.ErrorIs(t, err, ErrNotSupported)
	require.NoError(t, ach.Close())

	in, err := fs.NewInputStream("/f")
	require.NoError(t, err)
	defer in.Close()
	buf, err := io.ReadAll(in)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(buf))
}

func TestOpenFileDeleteOnCloseRemovesEntry(t *testing.T) {
	fs := newTestFS(t, Config{})
	ch, err := fs.OpenFile("/temp", OpenOptions{Mode: Write | Create | DeleteOnClose})
	require.NoError(t, err)
	_, err = ch.Write([]byte("ephemeral"))
	require.NoError(t, err)

	s, err := fs.NewDirectoryStream("/", nil)
	require.NoError(t, err)
	_, ok := s.Next()
	assert.True(t, ok, "file should still be visible before close")

	require.NoError(t, ch.Close())

	s2, err := fs.NewDirectoryStream("/", nil)
	require.NoError(t, err)
	_, ok = s2.Next()
	assert.False(t, ok, "file should be gone after close")

	_, err = fs.OpenFile("/temp", OpenOptions{Mode: Read})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRejectsNonEmptyDirectory(t *testing.T) {
	fs := newTestFS(t, Config{})
	require.NoError(t, fs.CreateDirectory("/a"))
	require.NoError(t, fs.CreateDirectory("/a/b"))

	err := fs.Delete("/a")
	assert.ErrorIs(t, err, ErrDirectoryNotEmpty)

	require.NoError(t, fs.Delete("/a/b"))
	require.NoError(t, fs.Delete("/a"))
}

func TestDeleteRejectsOpenFile(t *testing.T) {
	fs := newTestFS(t, Config{})
	ch, err := fs.OpenFile("/f", OpenOptions{Mode: Write | Create})
	require.NoError(t, err)

	err = fs.Delete("/f")
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, ch.Close())
	require.NoError(t, fs.Delete("/f"))
}

func TestMoveRenamesWithinSameDirectory(t *testing.T) {
	fs := newTestFS(t, Config{})
	ch, err := fs.OpenFile("/a", OpenOptions{Mode: Write | Create})
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	require.NoError(t, fs.Move("/a", "/b", MoveOptions{}))

	_, err = fs.OpenFile("/a", OpenOptions{Mode: Read})
	assert.ErrorIs(t, err, ErrNotFound)

	in, err := fs.NewInputStream("/b")
	require.NoError(t, err)
	require.NoError(t, in.Close())
}

func TestMoveAcrossDirectories(t *testing.T) {
	fs := newTestFS(t, Config{})
	require.NoError(t, fs.CreateDirectory("/src"))
	require.NoError(t, fs.CreateDirectory("/dst"))
	ch, err := fs.OpenFile("/src/file", OpenOptions{Mode: Write | Create})
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	require.NoError(t, fs.Move("/src/file", "/dst/file", MoveOptions{}))

	in, err := fs.NewInputStream("/dst/file")
	require.NoError(t, err)
	require.NoError(t, in.Close())
}

func TestMoveRejectsDestinationInsideSource(t *testing.T) {
	fs := newTestFS(t, Config{})
	require.NoError(t, fs.CreateDirectory("/a"))

	err := fs.Move("/a", "/a/sub", MoveOptions{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMoveWithoutReplaceExistingFailsOnCollision(t *testing.T) {
	fs := newTestFS(t, Config{})
	ch1, err := fs.OpenFile("/a", OpenOptions{Mode: Write | Create})
	require.NoError(t, err)
	require.NoError(t, ch1.Close())
	ch2, err := fs.OpenFile("/b", OpenOptions{Mode: Write | Create})
	require.NoError(t, err)
	require.NoError(t, ch2.Close())

	err = fs.Move("/a", "/b", MoveOptions{})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	require.NoError(t, fs.Move("/a", "/b", MoveOptions{ReplaceExisting: true}))
}

func TestCopyFileDuplicatesContentIndependently(t *testing.T) {
	fs := newTestFS(t, Config{})
	ch, err := fs.OpenFile("/src", OpenOptions{Mode: Write | Create})
	require.NoError(t, err)
	_, err = ch.Write([]byte("original"))
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	require.NoError(t, fs.Copy("/src", "/dup", CopyOptions{}))

	overwrite, err := fs.OpenFile("/src", OpenOptions{Mode: Write | TruncateExisting})
	require.NoError(t, err)
	_, err = overwrite.Write([]byte("changed"))
	require.NoError(t, err)
	require.NoError(t, overwrite.Close())

	dup, err := fs.NewInputStream("/dup")
	require.NoError(t, err)
	defer dup.Close()
	buf, err := io.ReadAll(dup)
	require.NoError(t, err)
	assert.Equal(t, "original", string(buf))
}

func TestCopyDirectoryRecursive(t *testing.T) {
	fs := newTestFS(t, Config{})
	require.NoError(t, fs.CreateDirectory("/src"))
	ch, err := fs.OpenFile("/src/child", OpenOptions{Mode: Write | Create})
	require.NoError(t, err)
	_, err = ch.Write([]byte("child data"))
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	err = fs.Copy("/src", "/dst", CopyOptions{})
	assert.ErrorIs(t, err, ErrInvalidArgument, "non-recursive copy of a non-empty directory should fail")

	require.NoError(t, fs.Copy("/src", "/dst", CopyOptions{Recursive: true}))

	in, err := fs.NewInputStream("/dst/child")
	require.NoError(t, err)
	defer in.Close()
	buf, err := io.ReadAll(in)
	require.NoError(t, err)
	assert.Equal(t, "child data", string(buf))
}

func TestCheckAccessAcceptsKnownModesOnly(t *testing.T) {
	fs := newTestFS(t, Config{})
	require.NoError(t, fs.CreateDirectory("/a"))

	assert.NoError(t, fs.CheckAccess("/a", attr.Read, attr.Write, attr.Execute))
	assert.ErrorIs(t, fs.CheckAccess("/a", attr.AccessMode(99)), ErrNotSupported)
}

func TestReadAttributesReflectsKind(t *testing.T) {
	fs := newTestFS(t, Config{})
	require.NoError(t, fs.CreateDirectory("/a"))

	b, err := fs.ReadAttributes("/a", true)
	require.NoError(t, err)
	assert.True(t, b.IsDirectory())
	assert.False(t, b.IsRegularFile())
}

func TestAttributeViewUnconfiguredFails(t *testing.T) {
	fs := newTestFS(t, Config{})
	require.NoError(t, fs.CreateDirectory("/a"))

	_, err := fs.AttributeView("/a", "posix", true)
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestAttributeViewPOSIXWhenConfigured(t *testing.T) {
	fs := newTestFS(t, Config{AdditionalViews: []string{"posix"}})
	require.NoError(t, fs.CreateDirectory("/a"))

	v, err := fs.AttributeView("/a", "posix", true)
	require.NoError(t, err)
	posix, ok := v.(attr.POSIX)
	require.True(t, ok)
	assert.NotZero(t, posix.Permissions())
}

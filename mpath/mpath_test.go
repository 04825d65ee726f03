package mpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var roots = []string{"/"}

func TestSplitAbsolutePath(t *testing.T) {
	root, elements, absolute := Split("/a/b/c", "/", roots)
	assert.True(t, absolute)
	assert.Equal(t, "/", root)
	assert.Equal(t, []string{"a", "b", "c"}, elements)
}

func TestSplitRootPath(t *testing.T) {
	root, elements, absolute := Split("/", "/", roots)
	assert.True(t, absolute)
	assert.Equal(t, "/", root)
	assert.Nil(t, elements)
}

func TestSplitCollapsesRepeatedSeparators(t *testing.T) {
	_, elements, _ := Split("/a//b///c/", "/", roots)
	assert.Equal(t, []string{"a", "b", "c"}, elements)
}

func TestSplitRelativePath(t *testing.T) {
	root, elements, absolute := Split("a/b", "/", roots)
	assert.False(t, absolute)
	assert.Equal(t, "", root)
	assert.Equal(t, []string{"a", "b"}, elements)
}

func TestSplitLongestRootWins(t *testing.T) {
	multiRoots := []string{"/mnt", "/mnt/data"}
	root, elements, absolute := Split("/mnt/data/file.txt", "/", multiRoots)
	assert.True(t, absolute)
	assert.Equal(t, "/mnt/data", root)
	assert.Equal(t, []string{"file.txt"}, elements)
}

func TestJoinIsSplitInverse(t *testing.T) {
	got := Join("/", "/", []string{"a", "b", "c"})
	assert.Equal(t, "/a/b/c", got)
}

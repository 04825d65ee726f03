package principal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroPrincipalIsZero(t *testing.T) {
	var p Principal
	assert.True(t, p.IsZero())
}

func TestRegistryEnsureMintsOncePerName(t *testing.T) {
	r := NewRegistry()

	alice := r.Ensure("alice")
	assert.Equal(t, "alice", alice.Name)
	assert.False(t, alice.IsZero())

	again := r.Ensure("alice")
	assert.Equal(t, alice, again)
}

func TestRegistryEnsureDistinctNamesGetDistinctIDs(t *testing.T) {
	r := NewRegistry()

	alice := r.Ensure("alice")
	bob := r.Ensure("bob")

	assert.NotEqual(t, alice.ID, bob.ID)
}

func TestRegistryLookupMiss(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup("nobody")
	assert.False(t, ok)
}

func TestRegistryLookupHit(t *testing.T) {
	r := NewRegistry()
	want := r.Ensure("alice")

	got, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

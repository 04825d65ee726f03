// Package attr declares the attribute-view contracts that memfs entries
// expose: basic, DOS, owner, POSIX, and user-defined. The concrete views
// live in package memfs, each backed by a pointer back to the owning
// entry so that reads take its read lock and writes take its write lock.
package attr

import (
	"time"

	"github.com/google/memoryfs/principal"
)

// View is the common supertype of every attribute view.
type View interface {
	// Name is the view name used to look it up, e.g. "basic", "posix".
	Name() string
}

// Basic is always available on every entry.
type Basic interface {
	View
	IsDirectory() bool
	IsRegularFile() bool
	IsSymlink() bool
	Size() int64
	CreationTime() time.Time
	LastModifiedTime() time.Time
	LastAccessTime() time.Time
	// SetTimes sets all three timestamps atomically; any nil argument
	// fails ErrInvalidArgument rather than leaving that field unchanged.
	SetTimes(created, modified, accessed *time.Time) error
}

// DOS adds the legacy FAT/NTFS attribute bits.
type DOS interface {
	View
	ReadOnly() bool
	Hidden() bool
	System() bool
	Archive() bool
	SetReadOnly(bool) error
	SetHidden(bool) error
	SetSystem(bool) error
	SetArchive(bool) error
}

// Owner exposes the owning user principal.
type Owner interface {
	View
	Owner() principal.Principal
	SetOwner(principal.Principal) error
}

// Permission is one of the nine POSIX rwx bits.
type Permission uint16

const (
	OwnerRead Permission = 1 << iota
	OwnerWrite
	OwnerExecute
	GroupRead
	GroupWrite
	GroupExecute
	OthersRead
	OthersWrite
	OthersExecute
)

// PermissionSet is a bitmask over Permission.
type PermissionSet Permission

// Has reports whether every bit in p is set.
func (s PermissionSet) Has(p Permission) bool {
	return Permission(s)&p == p
}

// With returns a copy of s with p set.
func (s PermissionSet) With(p Permission) PermissionSet {
	return PermissionSet(Permission(s) | p)
}

// Without returns a copy of s with p cleared.
func (s PermissionSet) Without(p Permission) PermissionSet {
	return PermissionSet(Permission(s) &^ p)
}

// POSIX extends Owner with a group principal and a permission set.
type POSIX interface {
	Owner
	Group() principal.Principal
	SetGroup(principal.Principal) error
	Permissions() PermissionSet
	SetPermissions(PermissionSet) error
}

// UserDefined is an arbitrary string -> byte-array map, modeled on
// extended file attributes.
type UserDefined interface {
	View
	List() []string
	Size(name string) (int, error)
	// Read copies the named attribute's value into buf, returning the
	// number of bytes copied. It fails if buf is smaller than the value.
	Read(name string, buf []byte) (int, error)
	Write(name string, value []byte) error
	Delete(name string) error
}

// AccessMode is one of the modes checkAccess validates against.
type AccessMode int

const (
	Read AccessMode = iota
	Write
	Execute
)

package memfs

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/memoryfs/attr"
	"github.com/google/memoryfs/principal"
)

// View names, used both as the views map key and as the attribute-view
// lookup name (AttributeView("basic"), "dos", "posix", "owner", "user").
const (
	viewBasic = "basic"
	viewDOS   = "dos"
	viewOwner = "owner"
	viewPOSIX = "posix"
	viewUser  = "user"
)

// basicView is always installed; every read takes the owning entry's
// read lock and every write takes its write lock, per "all view
// mutations take the entry's write lock; all reads take the read lock".
type basicView struct {
	e Entry
	f *File // nil unless the owning entry is a File
}

func (v *basicView) Name() string { return viewBasic }

func (v *basicView) IsDirectory() bool {
	guard := v.e.ReadLock()
	defer guard.Release()
	return v.e.Kind() == KindDirectory
}

func (v *basicView) IsRegularFile() bool {
	guard := v.e.ReadLock()
	defer guard.Release()
	return v.e.Kind() == KindFile
}

func (v *basicView) IsSymlink() bool {
	guard := v.e.ReadLock()
	defer guard.Release()
	return v.e.Kind() == KindSymlink
}

func (v *basicView) Size() int64 {
	if v.f == nil {
		return 0
	}
	guard := v.f.ReadLock()
	defer guard.Release()
	return v.f.size
}

func (v *basicView) CreationTime() time.Time {
	guard := v.e.ReadLock()
	defer guard.Release()
	return v.base().created
}

func (v *basicView) LastModifiedTime() time.Time {
	guard := v.e.ReadLock()
	defer guard.Release()
	return v.base().modified
}

func (v *basicView) LastAccessTime() time.Time {
	guard := v.e.ReadLock()
	defer guard.Release()
	return v.base().accessed
}

func (v *basicView) base() *entryBase {
	switch e := v.e.(type) {
	case *File:
		return &e.entryBase
	case *Directory:
		return &e.entryBase
	case *Symlink:
		return &e.entryBase
	default:
		panic("memfs: unknown entry type")
	}
}

func (v *basicView) SetTimes(created, modified, accessed *time.Time) error {
	guard := v.e.WriteLock()
	defer guard.Release()
	return v.base().setTimes(created, modified, accessed)
}

// dosView adds the four legacy FAT/NTFS bits.
type dosView struct {
	e                                 Entry
	readOnly, hidden, system, archive bool
}

func (v *dosView) Name() string { return viewDOS }

func (v *dosView) ReadOnly() bool {
	guard := v.e.ReadLock()
	defer guard.Release()
	return v.readOnly
}

func (v *dosView) Hidden() bool {
	guard := v.e.ReadLock()
	defer guard.Release()
	return v.hidden
}

func (v *dosView) System() bool {
	guard := v.e.ReadLock()
	defer guard.Release()
	return v.system
}

func (v *dosView) Archive() bool {
	guard := v.e.ReadLock()
	defer guard.Release()
	return v.archive
}

func (v *dosView) SetReadOnly(b bool) error {
	guard := v.e.WriteLock()
	defer guard.Release()
	v.readOnly = b
	return nil
}

func (v *dosView) SetHidden(b bool) error {
	guard := v.e.WriteLock()
	defer guard.Release()
	v.hidden = b
	return nil
}

func (v *dosView) SetSystem(b bool) error {
	guard := v.e.WriteLock()
	defer guard.Release()
	v.system = b
	return nil
}

func (v *dosView) SetArchive(b bool) error {
	guard := v.e.WriteLock()
	defer guard.Release()
	v.archive = b
	return nil
}

// ownerView exposes just the user principal; posixView embeds it and
// adds group + permissions.
type ownerView struct {
	e     Entry
	owner principal.Principal
}

func (v *ownerView) Name() string { return viewOwner }

func (v *ownerView) Owner() principal.Principal {
	guard := v.e.ReadLock()
	defer guard.Release()
	return v.owner
}

func (v *ownerView) SetOwner(p principal.Principal) error {
	guard := v.e.WriteLock()
	defer guard.Release()
	v.owner = p
	return nil
}

type posixView struct {
	ownerView
	group principal.Principal
	perms attr.PermissionSet
}

func (v *posixView) Name() string { return viewPOSIX }

func (v *posixView) Group() principal.Principal {
	guard := v.e.ReadLock()
	defer guard.Release()
	return v.group
}

func (v *posixView) SetGroup(p principal.Principal) error {
	guard := v.e.WriteLock()
	defer guard.Release()
	v.group = p
	return nil
}

func (v *posixView) Permissions() attr.PermissionSet {
	guard := v.e.ReadLock()
	defer guard.Release()
	return v.perms
}

func (v *posixView) SetPermissions(p attr.PermissionSet) error {
	guard := v.e.WriteLock()
	defer guard.Release()
	v.perms = p
	return nil
}

// userDefinedView is a string -> []byte map, modeled on extended
// attributes. Order of List() is insertion order.
type userDefinedView struct {
	e     Entry
	order []string
	attrs map[string][]byte
}

func newUserDefinedView(e Entry) *userDefinedView {
	return &userDefinedView{e: e, attrs: make(map[string][]byte)}
}

func (v *userDefinedView) Name() string { return viewUser }

func (v *userDefinedView) List() []string {
	guard := v.e.ReadLock()
	defer guard.Release()
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

func (v *userDefinedView) Size(name string) (int, error) {
	guard := v.e.ReadLock()
	defer guard.Release()
	val, ok := v.attrs[name]
	if !ok {
		return 0, ErrNotFound
	}
	return len(val), nil
}

func (v *userDefinedView) Read(name string, buf []byte) (int, error) {
	guard := v.e.ReadLock()
	defer guard.Release()
	val, ok := v.attrs[name]
	if !ok {
		return 0, ErrNotFound
	}
	if len(buf) < len(val) {
		return 0, ErrInvalidArgument
	}
	return copy(buf, val), nil
}

func (v *userDefinedView) Write(name string, value []byte) error {
	guard := v.e.WriteLock()
	defer guard.Release()
	if _, exists := v.attrs[name]; !exists {
		v.order = append(v.order, name)
	}
	v.attrs[name] = bytes.Clone(value)
	return nil
}

func (v *userDefinedView) Delete(name string) error {
	guard := v.e.WriteLock()
	defer guard.Release()
	if _, ok := v.attrs[name]; !ok {
		return ErrNotFound
	}
	delete(v.attrs, name)
	for i, n := range v.order {
		if n == name {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
	return nil
}

// installViews populates e.views with the view set configured for fs,
// per the additionalViews configuration: basic is always present; dos,
// posix, owner, and user-defined are added only if configured, and
// posix's presence subsumes owner (a filesystem configuring "posix"
// gets both view names, matching the owner-is-a-supertype-of-posix
// relationship in the attr package).
func installViews(fs *Filesystem, e Entry, base *entryBase, f *File) {
	base.views[viewBasic] = &basicView{e: e, f: f}

	if fs.hasView(viewDOS) {
		base.views[viewDOS] = &dosView{e: e, archive: true}
	}
	if fs.hasView(viewPOSIX) {
		pv := &posixView{
			ownerView: ownerView{e: e, owner: fs.defaultOwner},
			group:     fs.defaultGroup,
			perms:     fs.initialPermissions(e.Kind()),
		}
		base.views[viewPOSIX] = pv
		base.views[viewOwner] = &pv.ownerView
	} else if fs.hasView(viewOwner) {
		base.views[viewOwner] = &ownerView{e: e, owner: fs.defaultOwner}
	}
	if fs.hasView(viewUser) {
		base.views[viewUser] = newUserDefinedView(e)
	}
}

// splitAttributeName splits a "view:attribute" name on its first colon;
// a name with no colon addresses the basic view, matching the
// java.nio.file.Files.setAttribute convention this library follows.
func splitAttributeName(name string) (view, attrName string) {
	view, attrName, found := strings.Cut(name, ":")
	if !found {
		return viewBasic, name
	}
	return view, attrName
}

// applyAttribute dispatches a single named attribute write to the
// concrete view, type-asserting value against what that attribute
// expects. It is shared by SetAttribute and initial-attribute
// application at creation time.
func applyAttribute(view any, attrName string, value any) error {
	switch v := view.(type) {
	case attr.DOS:
		b, ok := value.(bool)
		if !ok {
			return ErrInvalidArgument
		}
		switch attrName {
		case "readOnly":
			return v.SetReadOnly(b)
		case "hidden":
			return v.SetHidden(b)
		case "system":
			return v.SetSystem(b)
		case "archive":
			return v.SetArchive(b)
		}
		return ErrNotSupported

	case attr.POSIX:
		switch attrName {
		case "owner":
			p, ok := value.(principal.Principal)
			if !ok {
				return ErrInvalidArgument
			}
			return v.SetOwner(p)
		case "group":
			p, ok := value.(principal.Principal)
			if !ok {
				return ErrInvalidArgument
			}
			return v.SetGroup(p)
		case "permissions":
			p, ok := value.(attr.PermissionSet)
			if !ok {
				return ErrInvalidArgument
			}
			return v.SetPermissions(p)
		}
		return ErrNotSupported

	case attr.Owner:
		if attrName != "owner" {
			return ErrNotSupported
		}
		p, ok := value.(principal.Principal)
		if !ok {
			return ErrInvalidArgument
		}
		return v.SetOwner(p)

	case attr.UserDefined:
		val, ok := value.([]byte)
		if !ok {
			return ErrInvalidArgument
		}
		return v.Write(attrName, val)

	case attr.Basic:
		// Timestamps are set atomically via SetTimes, never as a
		// standalone SetAttribute write.
		return ErrNotSupported

	default:
		return ErrNotSupported
	}
}

// Package principal is the opaque user/group identifier service that the
// POSIX and owner attribute views consume. The filesystem core never
// interprets a Principal beyond comparing and displaying it; resolving a
// Principal against a real OS or directory-service identity is the host
// integration layer's job.
package principal

import "github.com/google/uuid"

// Principal identifies a user or group. Two Principals are the same
// identity iff their Name is equal; ID only disambiguates display for
// anonymous principals minted by a Registry.
type Principal struct {
	Name string
	ID   uuid.UUID
}

// IsZero reports whether p is the unset principal.
func (p Principal) IsZero() bool {
	return p.Name == "" && p.ID == uuid.Nil
}

func (p Principal) String() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID.String()
}

// Registry is an in-memory, map-backed principal lookup, standing in for
// a real user/group directory service.
type Registry struct {
	byName map[string]Principal
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Principal)}
}

// Lookup returns the named Principal, if one has been registered.
func (r *Registry) Lookup(name string) (Principal, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Ensure returns the named Principal, minting one with a fresh ID on first
// use. Subsequent calls with the same name return the identical Principal.
func (r *Registry) Ensure(name string) Principal {
	if p, ok := r.byName[name]; ok {
		return p
	}
	p := Principal{Name: name, ID: uuid.New()}
	r.byName[name] = p
	return p
}

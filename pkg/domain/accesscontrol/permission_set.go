// Package accesscontrol implements tenant-scoped authorization resolution:
// which actions a user may perform, which records of an entity type they may
// see, and to whom they may assign work.
//
// Resolution is a pure read-and-decide operation over snapshots of the
// membership, custom role, grant, and organizational stores. Nothing here
// mutates business data, and every lookup failure degrades to the most
// restrictive applicable result at the caller's boundary.
package accesscontrol

import (
	"encoding/json"
	"sort"

	"github.com/clearcrm/authz/pkg/domain/permission"
)

// PermissionSet is the effective set of permission names held by a user
// within a tenant.
type PermissionSet map[permission.Permission]struct{}

// NewPermissionSet creates a PermissionSet from a list of permissions.
func NewPermissionSet(perms ...permission.Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Has checks if the set contains a permission.
func (s PermissionSet) Has(p permission.Permission) bool {
	_, ok := s[p]
	return ok
}

// HasAny checks if the set contains any of the given permissions.
func (s PermissionSet) HasAny(perms ...permission.Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// HasAll checks if the set contains all of the given permissions.
func (s PermissionSet) HasAll(perms ...permission.Permission) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Add adds a permission to the set.
func (s PermissionSet) Add(p permission.Permission) {
	s[p] = struct{}{}
}

// Len returns the number of permissions in the set.
func (s PermissionSet) Len() int {
	return len(s)
}

// Names returns the sorted permission names in the set.
func (s PermissionSet) Names() []string {
	names := make([]string, 0, len(s))
	for p := range s {
		names = append(names, p.String())
	}
	sort.Strings(names)
	return names
}

// MarshalJSON serializes the set as a sorted array of permission names.
func (s PermissionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON deserializes an array of permission names into the set.
func (s *PermissionSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set := make(PermissionSet, len(names))
	for _, name := range names {
		set[permission.Permission(name)] = struct{}{}
	}
	*s = set
	return nil
}

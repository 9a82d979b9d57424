package permission

// Scope represents the breadth of records a user may see or assign within
// a module. Scopes are not ordered for storage purposes; resolution applies
// the explicit precedence in ScopePrecedence.
type Scope string

const (
	// ScopeAll grants access to every record in the tenant.
	ScopeAll Scope = "all"
	// ScopeSelectedUsers grants access to records owned by an explicit
	// list of users carried on the custom role.
	ScopeSelectedUsers Scope = "selected_users"
	// ScopeBranch grants access to records owned within the same branch.
	ScopeBranch Scope = "branch"
	// ScopeDepartment grants access to records owned within the same department.
	ScopeDepartment Scope = "department"
	// ScopeOwn grants access to the user's own records only.
	ScopeOwn Scope = "own"
)

// ScopePrecedence is the fixed order in which scope grants are probed during
// resolution. The first matching scope wins; ScopeOwn is the fallback.
var ScopePrecedence = []Scope{
	ScopeAll,
	ScopeSelectedUsers,
	ScopeBranch,
	ScopeDepartment,
	ScopeOwn,
}

// IsValid checks if the scope is a known scope.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeAll, ScopeSelectedUsers, ScopeBranch, ScopeDepartment, ScopeOwn:
		return true
	}
	return false
}

// String returns the string representation of the scope.
func (s Scope) String() string {
	return string(s)
}

// Broader reports whether s takes precedence over other in the fixed
// resolution order.
func (s Scope) Broader(other Scope) bool {
	return scopeRank(s) < scopeRank(other)
}

func scopeRank(s Scope) int {
	for i, candidate := range ScopePrecedence {
		if candidate == s {
			return i
		}
	}
	return len(ScopePrecedence)
}

// ParseScope parses a string to a Scope.
func ParseScope(s string) (Scope, bool) {
	sc := Scope(s)
	return sc, sc.IsValid()
}

package customrole

import (
	"encoding/json"
	"fmt"

	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
)

// ModulePolicy holds the per-module settings of a custom role. All fields
// are optional; a nil scope means the module falls back to permission-string
// resolution.
type ModulePolicy struct {
	Visibility              *permission.Scope `json:"visibility,omitempty"`
	AssignmentScope         *permission.Scope `json:"assignment_scope,omitempty"`
	Actions                 map[string]bool   `json:"actions,omitempty"`
	VisibilitySelectedUsers []shared.ID       `json:"visibility_selected_users,omitempty"`
	AssignmentSelectedUsers []shared.ID       `json:"assignment_selected_users,omitempty"`
}

// HasVisibilitySelectedUser reports whether the given user is in the
// policy's visibility selected-users list.
func (p ModulePolicy) HasVisibilitySelectedUser(userID shared.ID) bool {
	for _, id := range p.VisibilitySelectedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// HasAssignmentSelectedUser reports whether the given user is in the
// policy's assignment selected-users list.
func (p ModulePolicy) HasAssignmentSelectedUser(userID shared.ID) bool {
	for _, id := range p.AssignmentSelectedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// PolicyMap maps database module names to module policies.
type PolicyMap map[string]ModulePolicy

// rawModulePolicy is the loosely-typed wire form of a module policy as it
// appears in the stored JSON blob. Keys are UI module names and scope and
// action values are unvalidated strings.
type rawModulePolicy struct {
	Visibility              *string         `json:"visibility"`
	AssignmentScope         *string         `json:"assignment_scope"`
	Actions                 map[string]bool `json:"actions"`
	VisibilitySelectedUsers []string        `json:"visibility_selected_users"`
	AssignmentSelectedUsers []string        `json:"assignment_selected_users"`
}

// ParsePolicyMap parses and validates a stored custom role permission blob.
// The blob is keyed by UI module name; keys are translated to database
// modules and action aliases are normalized, so the returned map is entirely
// canonical. Entries that fail structural validation (unknown module,
// invalid scope, unparseable user ID) are dropped rather than propagated.
// A blob that is not a JSON object at the top level returns
// shared.ErrMalformed; the caller treats that as an absent custom role.
func ParsePolicyMap(data []byte) (PolicyMap, error) {
	if len(data) == 0 {
		return PolicyMap{}, nil
	}

	var raw map[string]rawModulePolicy
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: custom role permissions: %v", shared.ErrMalformed, err)
	}

	policies := make(PolicyMap, len(raw))
	for uiModule, entry := range raw {
		module, ok := permission.ModuleForEntity(uiModule)
		if !ok {
			continue
		}

		policy, ok := buildPolicy(entry)
		if !ok {
			continue
		}

		policies[module] = mergePolicy(policies[module], policy)
	}

	return policies, nil
}

// buildPolicy validates one raw entry. Returns false when the entry is
// structurally unusable (invalid scope values).
func buildPolicy(entry rawModulePolicy) (ModulePolicy, bool) {
	var policy ModulePolicy

	if entry.Visibility != nil {
		scope, ok := permission.ParseScope(*entry.Visibility)
		if !ok {
			return ModulePolicy{}, false
		}
		policy.Visibility = &scope
	}

	if entry.AssignmentScope != nil {
		scope, ok := permission.ParseScope(*entry.AssignmentScope)
		if !ok {
			return ModulePolicy{}, false
		}
		policy.AssignmentScope = &scope
	}

	if len(entry.Actions) > 0 {
		policy.Actions = make(map[string]bool, len(entry.Actions))
		for action, allowed := range entry.Actions {
			policy.Actions[action] = allowed
		}
	}

	policy.VisibilitySelectedUsers = parseUserIDs(entry.VisibilitySelectedUsers)
	policy.AssignmentSelectedUsers = parseUserIDs(entry.AssignmentSelectedUsers)

	return policy, true
}

// mergePolicy folds a policy into an existing one for the same database
// module. Two UI modules can map to the same database module (companies and
// customers), in which case scopes already set win and action grants union.
func mergePolicy(existing, incoming ModulePolicy) ModulePolicy {
	if existing.Visibility == nil {
		existing.Visibility = incoming.Visibility
	}
	if existing.AssignmentScope == nil {
		existing.AssignmentScope = incoming.AssignmentScope
	}
	if len(incoming.Actions) > 0 {
		if existing.Actions == nil {
			existing.Actions = make(map[string]bool, len(incoming.Actions))
		}
		for action, allowed := range incoming.Actions {
			if allowed {
				existing.Actions[action] = true
			} else if _, ok := existing.Actions[action]; !ok {
				existing.Actions[action] = false
			}
		}
	}
	existing.VisibilitySelectedUsers = append(existing.VisibilitySelectedUsers, incoming.VisibilitySelectedUsers...)
	existing.AssignmentSelectedUsers = append(existing.AssignmentSelectedUsers, incoming.AssignmentSelectedUsers...)
	return existing
}

func parseUserIDs(values []string) []shared.ID {
	if len(values) == 0 {
		return nil
	}
	ids := make([]shared.ID, 0, len(values))
	for _, v := range values {
		id, err := shared.IDFromString(v)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

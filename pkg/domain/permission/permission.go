// Package permission defines the static catalog of permission identifiers
// used for tenant-scoped authorization.
//
// Permission naming convention follows a dot-namespaced hierarchical pattern:
//
//	{module}.{action}
//
// Examples:
//   - crm.deals.view (view deals)
//   - crm.contacts.edit (edit contacts and leads)
//
// Visibility and assignment grants carry the scope in the name:
//
//	{module}.visibility.{scope}
//	{module}.assignment.{scope}
//
// Examples:
//   - crm.deals.visibility.branch
//   - crm.customers.assignment.own
//
// The catalog is immutable and tenant-independent. Consumers never hard-code
// raw permission strings; they go through the constants and builders here.
package permission

import "slices"

// Permission represents a granular permission identifier.
type Permission string

// String returns the string representation of the permission.
func (p Permission) String() string {
	return string(p)
}

// Database module names. Custom role permission maps and UI entity types are
// translated onto these via the tables in modules.go.
const (
	ModuleCustomers = "crm.customers"
	ModuleContacts  = "crm.contacts"
	ModuleDeals     = "crm.deals"
	ModuleSites     = "crm.sites"
	ModuleProjects  = "crm.projects"
	ModuleTodos     = "crm.todos"
)

// Modules lists every database module in the catalog.
var Modules = []string{
	ModuleCustomers,
	ModuleContacts,
	ModuleDeals,
	ModuleSites,
	ModuleProjects,
	ModuleTodos,
}

// Action names shared by every module.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionExport = "export"
)

// Actions lists every action in the catalog.
var Actions = []string{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionExport}

// =============================================================================
// CUSTOMERS MODULE (companies and customers)
// =============================================================================

const (
	CustomersView   Permission = "crm.customers.view"
	CustomersCreate Permission = "crm.customers.create"
	CustomersEdit   Permission = "crm.customers.edit"
	CustomersDelete Permission = "crm.customers.delete"
	CustomersExport Permission = "crm.customers.export"
)

// =============================================================================
// CONTACTS MODULE (contacts and leads)
// =============================================================================

const (
	ContactsView   Permission = "crm.contacts.view"
	ContactsCreate Permission = "crm.contacts.create"
	ContactsEdit   Permission = "crm.contacts.edit"
	ContactsDelete Permission = "crm.contacts.delete"
	ContactsExport Permission = "crm.contacts.export"
)

// =============================================================================
// DEALS MODULE
// =============================================================================

const (
	DealsView   Permission = "crm.deals.view"
	DealsCreate Permission = "crm.deals.create"
	DealsEdit   Permission = "crm.deals.edit"
	DealsDelete Permission = "crm.deals.delete"
	DealsExport Permission = "crm.deals.export"
)

// =============================================================================
// SITES MODULE
// =============================================================================

const (
	SitesView   Permission = "crm.sites.view"
	SitesCreate Permission = "crm.sites.create"
	SitesEdit   Permission = "crm.sites.edit"
	SitesDelete Permission = "crm.sites.delete"
	SitesExport Permission = "crm.sites.export"
)

// =============================================================================
// PROJECTS MODULE
// =============================================================================

const (
	ProjectsView   Permission = "crm.projects.view"
	ProjectsCreate Permission = "crm.projects.create"
	ProjectsEdit   Permission = "crm.projects.edit"
	ProjectsDelete Permission = "crm.projects.delete"
	ProjectsExport Permission = "crm.projects.export"
)

// =============================================================================
// TODOS MODULE
// =============================================================================

const (
	TodosView   Permission = "crm.todos.view"
	TodosCreate Permission = "crm.todos.create"
	TodosEdit   Permission = "crm.todos.edit"
	TodosDelete Permission = "crm.todos.delete"
	TodosExport Permission = "crm.todos.export"
)

// Action builds the permission name for an action on a database module.
// Action aliases (read -> view) are applied.
func Action(module, action string) Permission {
	if canonical, ok := actionAliases[action]; ok {
		action = canonical
	}
	return Permission(module + "." + action)
}

// Visibility builds the visibility permission name for a module and scope.
func Visibility(module string, scope Scope) Permission {
	return Permission(module + ".visibility." + scope.String())
}

// Assignment builds the assignment permission name for a module and scope.
func Assignment(module string, scope Scope) Permission {
	return Permission(module + ".assignment." + scope.String())
}

// AllPermissions returns every permission in the catalog: each module's
// action permissions plus its visibility and assignment grants per scope.
// This is the maximal set resolved for admin roles.
func AllPermissions() []Permission {
	perms := make([]Permission, 0, len(Modules)*(len(Actions)+2*len(ScopePrecedence)))
	for _, module := range Modules {
		for _, action := range Actions {
			perms = append(perms, Action(module, action))
		}
		for _, scope := range ScopePrecedence {
			perms = append(perms, Visibility(module, scope))
			perms = append(perms, Assignment(module, scope))
		}
	}
	return perms
}

// IsValid checks if the permission is a known catalog permission.
func (p Permission) IsValid() bool {
	return slices.Contains(AllPermissions(), p)
}

// Parse parses a string to a Permission.
func Parse(s string) (Permission, bool) {
	p := Permission(s)
	return p, p.IsValid()
}

// ToStrings converts a slice of Permissions to a slice of strings.
func ToStrings(perms []Permission) []string {
	result := make([]string, len(perms))
	for i, p := range perms {
		result[i] = p.String()
	}
	return result
}

// Contains checks if a permission slice contains a specific permission.
func Contains(perms []Permission, target Permission) bool {
	return slices.Contains(perms, target)
}

// ContainsAny checks if a permission slice contains any of the target permissions.
func ContainsAny(perms []Permission, targets ...Permission) bool {
	for _, target := range targets {
		if Contains(perms, target) {
			return true
		}
	}
	return false
}

// ContainsAll checks if a permission slice contains all of the target permissions.
func ContainsAll(perms []Permission, targets ...Permission) bool {
	for _, target := range targets {
		if !Contains(perms, target) {
			return false
		}
	}
	return true
}

package permission

import "strings"

// Entity types exposed by the UI layer. Several UI entity types share a
// database module (companies and customers are one table; leads are a
// lifecycle stage of contacts).
const (
	EntityCompanies = "companies"
	EntityCustomers = "customers"
	EntityLeads     = "leads"
	EntityContacts  = "contacts"
	EntityDeals     = "deals"
	EntitySites     = "sites"
	EntityProjects  = "projects"
	EntityTodos     = "todos"
)

// entityModules is the declared translation table from UI entity type to
// database module. It is versioned alongside the catalog constants and never
// inferred at runtime.
var entityModules = map[string]string{
	EntityCompanies: ModuleCustomers,
	EntityCustomers: ModuleCustomers,
	EntityLeads:     ModuleContacts,
	EntityContacts:  ModuleContacts,
	EntityDeals:     ModuleDeals,
	EntitySites:     ModuleSites,
	EntityProjects:  ModuleProjects,
	EntityTodos:     ModuleTodos,
}

// actionAliases maps legacy action names from stored custom role blobs to
// their canonical catalog action.
var actionAliases = map[string]string{
	"read": ActionView,
}

// TodoInheritanceOrder is the fixed list of entity types probed, in order,
// when a user has no todos-specific visibility grant. The broadest scope
// held across these entity types becomes the todos visibility level.
var TodoInheritanceOrder = []string{
	EntityCompanies,
	EntityContacts,
	EntityDeals,
	EntitySites,
	EntityProjects,
}

// ModuleForEntity translates a UI entity type to its database module.
// Returns false for entity types outside the catalog.
func ModuleForEntity(entityType string) (string, bool) {
	module, ok := entityModules[entityType]
	return module, ok
}

// EntityTypes returns every known UI entity type.
func EntityTypes() []string {
	types := make([]string, 0, len(entityModules))
	for t := range entityModules {
		types = append(types, t)
	}
	return types
}

// LegacyName converts a canonical dot-namespaced permission name to the
// legacy underscore format some older consumers still expect
// (crm.deals.view -> crm_deals_view). The canonical dot format is the only
// representation used internally; this translation exists for the one
// boundary that needs it.
func LegacyName(p Permission) string {
	return strings.ReplaceAll(p.String(), ".", "_")
}

// FromLegacyName converts a legacy underscore-formatted permission name back
// to the canonical form. Only names produced by LegacyName round-trip; the
// crm_ prefix maps back to the crm. module namespace.
func FromLegacyName(s string) (Permission, bool) {
	return Parse(strings.ReplaceAll(s, "_", "."))
}

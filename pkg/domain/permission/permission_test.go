package permission

import (
	"testing"
)

func TestActionAppliesAliases(t *testing.T) {
	if got := Action(ModuleDeals, "read"); got != DealsView {
		t.Errorf("Action(deals, read) = %s, want %s", got, DealsView)
	}
	if got := Action(ModuleDeals, "edit"); got != DealsEdit {
		t.Errorf("Action(deals, edit) = %s, want %s", got, DealsEdit)
	}
}

func TestScopedBuilders(t *testing.T) {
	if got := Visibility(ModuleDeals, ScopeBranch); got != "crm.deals.visibility.branch" {
		t.Errorf("Visibility = %s", got)
	}
	if got := Assignment(ModuleCustomers, ScopeOwn); got != "crm.customers.assignment.own" {
		t.Errorf("Assignment = %s", got)
	}
}

func TestModuleForEntity(t *testing.T) {
	cases := map[string]string{
		EntityCompanies: ModuleCustomers,
		EntityCustomers: ModuleCustomers,
		EntityLeads:     ModuleContacts,
		EntityContacts:  ModuleContacts,
		EntityDeals:     ModuleDeals,
		EntitySites:     ModuleSites,
		EntityProjects:  ModuleProjects,
		EntityTodos:     ModuleTodos,
	}
	for entity, want := range cases {
		got, ok := ModuleForEntity(entity)
		if !ok || got != want {
			t.Errorf("ModuleForEntity(%s) = %s, %v; want %s", entity, got, ok, want)
		}
	}
	if _, ok := ModuleForEntity("invoices"); ok {
		t.Error("unknown entity type must not translate")
	}
}

func TestAllPermissionsCoversCatalog(t *testing.T) {
	all := AllPermissions()

	want := len(Modules) * (len(Actions) + 2*len(ScopePrecedence))
	if len(all) != want {
		t.Errorf("catalog size = %d, want %d", len(all), want)
	}

	for _, p := range []Permission{
		DealsView,
		CustomersDelete,
		Visibility(ModuleTodos, ScopeSelectedUsers),
		Assignment(ModuleProjects, ScopeBranch),
	} {
		if !Contains(all, p) {
			t.Errorf("catalog missing %s", p)
		}
	}
}

func TestScopePrecedence(t *testing.T) {
	if !ScopeAll.Broader(ScopeOwn) {
		t.Error("all should take precedence over own")
	}
	if !ScopeSelectedUsers.Broader(ScopeBranch) {
		t.Error("selected_users should take precedence over branch")
	}
	if ScopeDepartment.Broader(ScopeBranch) {
		t.Error("department must not take precedence over branch")
	}
	if _, ok := ParseScope("global"); ok {
		t.Error("unknown scope must not parse")
	}
}

func TestLegacyNameRoundTrip(t *testing.T) {
	if got := LegacyName(DealsView); got != "crm_deals_view" {
		t.Errorf("LegacyName = %s", got)
	}

	p, ok := FromLegacyName("crm_deals_view")
	if !ok || p != DealsView {
		t.Errorf("FromLegacyName = %s, %v", p, ok)
	}

	if _, ok := FromLegacyName("crm_deals_explode"); ok {
		t.Error("unknown legacy name must not parse")
	}
}

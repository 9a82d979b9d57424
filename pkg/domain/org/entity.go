// Package org provides the organizational assignment graph used for
// hierarchical visibility checks: user -> department -> branch.
package org

import (
	"github.com/clearcrm/authz/pkg/domain/shared"
)

// Assignment places a user in a department within a tenant.
type Assignment struct {
	userID       shared.ID
	tenantID     shared.ID
	departmentID shared.ID
}

// ReconstituteAssignment recreates an Assignment from persistence.
func ReconstituteAssignment(userID, tenantID, departmentID shared.ID) *Assignment {
	return &Assignment{
		userID:       userID,
		tenantID:     tenantID,
		departmentID: departmentID,
	}
}

// UserID returns the assigned user's ID.
func (a *Assignment) UserID() shared.ID {
	return a.userID
}

// TenantID returns the tenant ID.
func (a *Assignment) TenantID() shared.ID {
	return a.tenantID
}

// DepartmentID returns the department the user belongs to.
func (a *Assignment) DepartmentID() shared.ID {
	return a.departmentID
}

// Department links a department to its branch.
type Department struct {
	id       shared.ID
	branchID shared.ID
}

// ReconstituteDepartment recreates a Department from persistence.
func ReconstituteDepartment(id, branchID shared.ID) *Department {
	return &Department{id: id, branchID: branchID}
}

// ID returns the department ID.
func (d *Department) ID() shared.ID {
	return d.id
}

// BranchID returns the branch the department belongs to.
func (d *Department) BranchID() shared.ID {
	return d.branchID
}

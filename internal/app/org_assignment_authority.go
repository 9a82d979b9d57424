package app

import (
	"context"
	"fmt"

	"github.com/clearcrm/authz/pkg/domain/accesscontrol"
	"github.com/clearcrm/authz/pkg/domain/org"
	"github.com/clearcrm/authz/pkg/domain/shared"
)

// OrgAssignmentAuthority is the default accesscontrol.AssignmentAuthority:
// it allows an assignment when assigner and target belong to the same
// branch of the tenant's org tree. Deployments with their own assignment
// rules inject a different authority.
type OrgAssignmentAuthority struct {
	org org.Repository
}

// NewOrgAssignmentAuthority creates a new OrgAssignmentAuthority.
func NewOrgAssignmentAuthority(orgRepo org.Repository) *OrgAssignmentAuthority {
	return &OrgAssignmentAuthority{org: orgRepo}
}

var _ accesscontrol.AssignmentAuthority = (*OrgAssignmentAuthority)(nil)

// CanAssign reports whether assigner and target share a branch. A user
// without an org assignment cannot be assigned to.
func (a *OrgAssignmentAuthority) CanAssign(ctx context.Context, assignerID, targetID, tenantID shared.ID, entityType string) (bool, error) {
	assignerBranch, err := a.branchOf(ctx, assignerID, tenantID)
	if err != nil {
		if shared.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	targetBranch, err := a.branchOf(ctx, targetID, tenantID)
	if err != nil {
		if shared.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	return assignerBranch == targetBranch, nil
}

func (a *OrgAssignmentAuthority) branchOf(ctx context.Context, userID, tenantID shared.ID) (shared.ID, error) {
	assignment, err := a.org.GetAssignment(ctx, userID, tenantID)
	if err != nil {
		return shared.ID{}, err
	}
	dept, err := a.org.GetDepartment(ctx, assignment.DepartmentID())
	if err != nil {
		return shared.ID{}, fmt.Errorf("department %s: %w", assignment.DepartmentID(), err)
	}
	return dept.BranchID(), nil
}

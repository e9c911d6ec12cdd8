package services

import (
	"fmt"

	"StaffBox/models"
)

// Operation is a backup-engine action submitted to the authorization
// gate.
type Operation string

const (
	OperationCapture Operation = "capture"
	OperationRestore Operation = "restore"
	OperationManage  Operation = "manage" // registry, settings, recipients
)

// Authorize is the single authorization gate for the backup engine. It
// is a pure decision: no caching, no side effects, re-checked on every
// request.
//
// System scope requires the platform super-admin role. Tenant scope
// requires the actor to belong to the target tenant and hold the owner
// or admin role there.
func Authorize(actor *models.User, op Operation, scope models.BackupScope, targetTenantID string) error {
	if actor == nil {
		return ErrUnauthorized
	}

	switch scope {
	case models.ScopeSystem:
		if !actor.IsSuperAdmin() {
			return fmt.Errorf("%w: %s with system scope requires super admin", ErrForbidden, op)
		}
		return nil
	case models.ScopeTenant:
		if actor.IsSuperAdmin() {
			return nil
		}
		if targetTenantID == "" {
			return fmt.Errorf("%w: tenant scope requires a target tenant", ErrForbidden)
		}
		if actor.TenantID != targetTenantID {
			return fmt.Errorf("%w: actor belongs to a different tenant", ErrForbidden)
		}
		if actor.Role != models.RoleOwner && actor.Role != models.RoleAdmin {
			return fmt.Errorf("%w: %s requires the owner or admin role", ErrForbidden, op)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown scope %q", ErrForbidden, scope)
	}
}

// CanActFor reports whether an actor may operate on behalf of a tenant.
// The tenant-impersonation feature uses the same check, so the scoping
// rule lives in exactly one place.
func CanActFor(actor *models.User, tenantID string) bool {
	return Authorize(actor, OperationManage, models.ScopeTenant, tenantID) == nil
}

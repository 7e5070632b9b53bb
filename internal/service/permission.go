package service

import "civic-registry/internal/domain"

// Owner describes who a resource belongs to. UserID is set for user-owned
// resources (templates, messages); Direction for region-owned ones (people).
type Owner struct {
	UserID    int64
	Direction domain.Direction
}

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Err returns nil when allowed and a 403 domain error otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return domain.Forbidden(d.Reason)
}

var (
	allow = Decision{Allowed: true}
	deny  = Decision{Reason: "Access denied"}
)

// Authorize decides whether caller may mutate or read a resource owned by
// owner. Superadmins may act on anything. Admins may act on resources they
// own, or on region-owned resources inside their own region.
func Authorize(caller Caller, owner Owner) Decision {
	switch caller.Role {
	case domain.RoleSuperAdmin:
		return allow
	case domain.RoleAdmin:
		if owner.UserID != 0 && owner.UserID == caller.ID {
			return allow
		}
		if owner.Direction != "" && caller.Direction != "" && owner.Direction == caller.Direction {
			return allow
		}
	}
	return deny
}

// RequireSuperAdmin is the gate for admin-panel account management.
func RequireSuperAdmin(caller Caller) Decision {
	if caller.IsSuperAdmin() {
		return allow
	}
	return Decision{Reason: "Access denied. Required role: superadmin"}
}

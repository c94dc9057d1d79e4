package identity

import (
	"strings"

	"github.com/stockroom/backend/internal/domain/shared"
)

// Role is the access level assigned to a user
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleManager        Role = "manager"
	RoleWarehouseStaff Role = "warehouse_staff"
)

// DefaultRole is assigned to self-registered users
const DefaultRole = RoleWarehouseStaff

// AllRoles lists every role in descending privilege order
var AllRoles = []Role{RoleAdmin, RoleManager, RoleWarehouseStaff}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleWarehouseStaff:
		return true
	}
	return false
}

// String returns the role name
func (r Role) String() string {
	return string(r)
}

// ParseRole converts s to a Role. An empty string yields DefaultRole.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultRole, nil
	}
	r := Role(s)
	if !r.IsValid() {
		return "", shared.NewDomainError("INVALID_ROLE", "Role must be one of: admin, manager, warehouse_staff")
	}
	return r, nil
}

// Authorize is the route access policy: subject is allowed iff it is one of allowed.
// An empty allowed set denies everyone.
func Authorize(subject Role, allowed ...Role) bool {
	for _, r := range allowed {
		if subject == r {
			return true
		}
	}
	return false
}

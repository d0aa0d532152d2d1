// Package authz holds the role-scoped access control rules: which rows of
// each resource an actor may see or mutate, as pure functions of the
// actor's role and organizational placement. HTTP status mapping stays at
// the transport boundary; predicates only return decisions.
package authz

import "fmt"

type Role string

const (
	RoleAdmin             Role = "admin"
	RoleDivisionManager   Role = "division_manager"
	RoleDepartmentManager Role = "department_manager"
	RoleEmployee          Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDivisionManager, RoleDepartmentManager, RoleEmployee:
		return true
	}
	return false
}

// Actor is the authenticated principal as the scoper sees it.
type Actor struct {
	ID           int64
	Role         Role
	DivisionID   *int64
	DepartmentID *int64
}

// UserRef is the organizational placement of a user record under decision.
type UserRef struct {
	ID           int64
	Role         Role
	DivisionID   *int64
	DepartmentID *int64
}

// DepartmentRef is the placement of a department record under decision.
type DepartmentRef struct {
	ID         int64
	DivisionID int64
}

// Decision is the tagged result of a predicate: Allowed, or Denied with the
// reason that ends up in the 403 body.
type Decision struct {
	allowed bool
	reason  string
}

func Allow() Decision {
	return Decision{allowed: true}
}

func Deny(reason string) Decision {
	return Decision{reason: reason}
}

func Denyf(format string, args ...any) Decision {
	return Decision{reason: fmt.Sprintf(format, args...)}
}

func (d Decision) Allowed() bool { return d.allowed }
func (d Decision) Reason() string {
	if d.allowed {
		return ""
	}
	return d.reason
}

func sameID(a *int64, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

// CanSeeUser decides visibility of a single user record.
func CanSeeUser(actor Actor, target UserRef) Decision {
	switch actor.Role {
	case RoleAdmin:
		return Allow()
	case RoleDivisionManager:
		if sameID(actor.DivisionID, target.DivisionID) {
			return Allow()
		}
		return Deny("user is outside your division")
	case RoleDepartmentManager:
		if sameID(actor.DepartmentID, target.DepartmentID) {
			return Allow()
		}
		return Deny("user is outside your department")
	default:
		if actor.ID == target.ID {
			return Allow()
		}
		return Deny("can only view your own profile")
	}
}

// CanMutateUser decides whether the actor may update the target user record
// at all. Which fields are mutable for which role is the user service's
// concern; role escalation rules live in CanChangeRole.
func CanMutateUser(actor Actor, target UserRef) Decision {
	switch actor.Role {
	case RoleAdmin:
		return Allow()
	case RoleDivisionManager:
		if target.Role == RoleAdmin {
			return Deny("cannot modify admin accounts")
		}
		if sameID(actor.DivisionID, target.DivisionID) {
			return Allow()
		}
		return Deny("can only update users in your division")
	case RoleDepartmentManager:
		if sameID(actor.DepartmentID, target.DepartmentID) {
			return Allow()
		}
		return Deny("can only update users in your department")
	default:
		if actor.ID == target.ID {
			return Allow()
		}
		return Deny("can only update your own profile")
	}
}

// CanChangeRole guards role and org-assignment transitions on a user.
func CanChangeRole(actor Actor, target UserRef, newRole Role) Decision {
	if actor.Role == RoleAdmin {
		return Allow()
	}
	if actor.Role == RoleDivisionManager {
		if target.Role == RoleAdmin || newRole == RoleAdmin {
			return Deny("cannot assign or revoke admin roles")
		}
		if sameID(actor.DivisionID, target.DivisionID) {
			return Allow()
		}
		return Deny("can only change roles in your division")
	}
	return Deny("not enough permissions to change roles")
}

func CanSeeDivision(actor Actor, divisionID int64) Decision {
	if actor.Role == RoleAdmin {
		return Allow()
	}
	if actor.DivisionID != nil && *actor.DivisionID == divisionID {
		return Allow()
	}
	return Deny("division is outside your scope")
}

func CanMutateDivision(actor Actor) Decision {
	if actor.Role == RoleAdmin {
		return Allow()
	}
	return Deny("only admin can manage divisions")
}

func CanSeeDepartment(actor Actor, dept DepartmentRef) Decision {
	switch actor.Role {
	case RoleAdmin:
		return Allow()
	case RoleDivisionManager:
		if actor.DivisionID != nil && *actor.DivisionID == dept.DivisionID {
			return Allow()
		}
		return Deny("department is outside your division")
	default:
		if actor.DepartmentID != nil && *actor.DepartmentID == dept.ID {
			return Allow()
		}
		return Deny("department is outside your scope")
	}
}

func CanMutateDepartment(actor Actor, dept DepartmentRef) Decision {
	switch actor.Role {
	case RoleAdmin:
		return Allow()
	case RoleDivisionManager:
		if actor.DivisionID != nil && *actor.DivisionID == dept.DivisionID {
			return Allow()
		}
		return Deny("can only manage departments in your division")
	default:
		return Deny("not enough permissions to manage departments")
	}
}

// Scope narrows a list query to the rows the actor may see. Repositories
// translate it to WHERE clauses; Empty short-circuits to no rows.
type Scope struct {
	All          bool
	Empty        bool
	DivisionID   *int64
	DepartmentID *int64
	SelfID       *int64
}

// UserScope is the visibility filter for user listings.
func UserScope(actor Actor) Scope {
	switch actor.Role {
	case RoleAdmin:
		return Scope{All: true}
	case RoleDivisionManager:
		if actor.DivisionID == nil {
			return Scope{Empty: true}
		}
		return Scope{DivisionID: actor.DivisionID}
	case RoleDepartmentManager:
		if actor.DepartmentID == nil {
			return Scope{Empty: true}
		}
		return Scope{DepartmentID: actor.DepartmentID}
	default:
		self := actor.ID
		return Scope{SelfID: &self}
	}
}

// DivisionScope filters division listings: everyone outside admin sees at
// most the division they are assigned to.
func DivisionScope(actor Actor) Scope {
	if actor.Role == RoleAdmin {
		return Scope{All: true}
	}
	if actor.DivisionID == nil {
		return Scope{Empty: true}
	}
	return Scope{DivisionID: actor.DivisionID}
}

// DepartmentScope filters department listings.
func DepartmentScope(actor Actor) Scope {
	switch actor.Role {
	case RoleAdmin:
		return Scope{All: true}
	case RoleDivisionManager:
		if actor.DivisionID == nil {
			return Scope{Empty: true}
		}
		return Scope{DivisionID: actor.DivisionID}
	default:
		if actor.DepartmentID == nil {
			return Scope{Empty: true}
		}
		return Scope{DepartmentID: actor.DepartmentID}
	}
}

// AdmissibleComposite reports whether a {role, division, department}
// combination is a legal user state. Division managers and admins never
// carry a department assignment; a department manager must have one.
func AdmissibleComposite(role Role, divisionID, departmentID *int64) bool {
	switch role {
	case RoleAdmin, RoleDivisionManager:
		return departmentID == nil
	case RoleDepartmentManager:
		return departmentID != nil && divisionID != nil
	case RoleEmployee:
		return true
	}
	return false
}

package domain

type Role string

const (
	RoleClient        Role = "client"
	RoleDebtCollector Role = "debt_collector"
	RoleCreditHead    Role = "credit_head"
	RoleLawyer        Role = "lawyer"
	RoleLawFirmAdmin  Role = "law_firm_admin"
	RoleAdmin         Role = "admin"
)

// Privileged roles may mutate any case regardless of assignment.
func (r Role) Privileged() bool {
	return r == RoleCreditHead || r == RoleLawFirmAdmin || r == RoleAdmin
}

// CanAssignCases reports whether the role may assign cases to users.
func (r Role) CanAssignCases() bool {
	return r == RoleCreditHead || r == RoleLawFirmAdmin || r == RoleAdmin
}

// CanCreateCases covers collection-side staff; clients and legal-only roles
// never open cases themselves.
func (r Role) CanCreateCases() bool {
	return r == RoleDebtCollector || r.Privileged()
}

// CanVoidEscalations gates the admin-only cleanup of a dangling pending
// escalation payment.
func (r Role) CanVoidEscalations() bool {
	return r == RoleLawFirmAdmin || r == RoleAdmin
}

// Assignable reports whether a user with this role may be assigned cases.
func (r Role) Assignable() bool {
	switch r {
	case RoleDebtCollector, RoleCreditHead, RoleLawFirmAdmin, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Role      Role
}

// Actor is the authenticated caller of an engine operation.
type Actor struct {
	UserID int64
	Role   Role
}

// FilterAssignable keeps only users that may hold case assignments.
func FilterAssignable(users []User) []User {
	var out []User
	for _, u := range users {
		if u.Role.Assignable() {
			out = append(out, u)
		}
	}
	return out
}

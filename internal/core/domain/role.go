package domain

// Role is the authorization tag carried by every authenticated actor.
type Role string

const (
	RoleAgent      Role = "agent"
	RoleBankStaff  Role = "bank_staff"
	RoleBankAdmin  Role = "bank_admin"
	RoleCTO        Role = "cto"
	RoleN1Reviewer Role = "n1_reviewer"
	RoleN2Reviewer Role = "n2_reviewer"
	RoleSuperAdmin Role = "super_admin"
)

// AllRoles lists every role in a stable order.
var AllRoles = []Role{
	RoleAgent, RoleBankStaff, RoleBankAdmin, RoleCTO, RoleN1Reviewer, RoleN2Reviewer, RoleSuperAdmin,
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsReviewer reports whether the role may record field validations.
func (r Role) IsReviewer() bool {
	switch r {
	case RoleBankStaff, RoleBankAdmin, RoleCTO, RoleN1Reviewer, RoleN2Reviewer:
		return true
	}
	return false
}

// IsBankScoped reports whether the role belongs to exactly one bank.
func (r Role) IsBankScoped() bool {
	return r != RoleSuperAdmin
}

// Actor is the resolved identity performing an operation.
type Actor struct {
	UserID   string  `json:"userID"`
	Role     Role    `json:"role"`
	BankID   *string `json:"bankID,omitempty"`
	AgencyID *string `json:"agencyID,omitempty"`
}

// InBank reports whether the actor belongs to bankID. Super admins belong to every bank.
func (a Actor) InBank(bankID string) bool {
	if a.Role == RoleSuperAdmin {
		return true
	}
	return a.BankID != nil && *a.BankID == bankID
}

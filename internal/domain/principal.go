package domain

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type PrincipalKind string

const (
	PrincipalAnonymous  PrincipalKind = "ANONYMOUS"
	PrincipalIdentified PrincipalKind = "IDENTIFIED"
)

// Principal is the resolved identity driving authorization decisions.
// It is owned by the auth session; everything else only reads it.
type Principal struct {
	Kind      PrincipalKind
	SubjectID string
	Email     string
	Role      Role
}

func Anonymous() Principal {
	return Principal{Kind: PrincipalAnonymous}
}

func (p Principal) Identified() bool {
	return p.Kind == PrincipalIdentified
}

func (p Principal) IsAdmin() bool {
	return p.Kind == PrincipalIdentified && p.Role == RoleAdmin
}

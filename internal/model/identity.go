package model

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProvider  Role = "provider"
	RoleReception Role = "reception"
	RoleClient    Role = "client"
	// RoleSystem acts for inbound gateway callbacks. It has no policy entries.
	RoleSystem Role = "system"
)

// Valid reports whether r can be carried by a caller credential.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProvider, RoleReception, RoleClient:
		return true
	}
	return false
}

// Identity is the authenticated caller. It is fixed for a request and passed
// explicitly to every policy and mutation call.
type Identity struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// SystemIdentity is the actor recorded for webhook driven transitions.
func SystemIdentity() Identity {
	return Identity{ID: 0, Role: RoleSystem}
}

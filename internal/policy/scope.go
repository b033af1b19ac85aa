package policy

import "fmt"

// ScopeKind names a predicate over resource rows.
type ScopeKind string

const (
	ScopeAll  ScopeKind = "all"
	ScopeNone ScopeKind = "none"
	// ScopeOwnedByClientUser matches rows of the caller's own client profile.
	ScopeOwnedByClientUser ScopeKind = "owned_by_client_user"
	// ScopeLinkedByProviderAppointment matches clients with at least one
	// appointment with the calling provider.
	ScopeLinkedByProviderAppointment ScopeKind = "linked_by_provider_appointment"
	// ScopeAssignedOrLinkedClient widens the above with clients whose
	// preferred provider is the caller. Needs clients.preferred_provider_id.
	ScopeAssignedOrLinkedClient ScopeKind = "assigned_or_linked_client"
	// ScopeAssignedToProvider matches appointments held by the caller.
	ScopeAssignedToProvider ScopeKind = "assigned_to_provider"
	// ScopePaymentsOfProviderAppointments matches payments attached to the
	// caller's appointments.
	ScopePaymentsOfProviderAppointments ScopeKind = "payments_of_provider_appointments"
)

// Scope is a resolved predicate: a kind plus the caller values it binds.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	// ClientID is the caller's client profile for ScopeOwnedByClientUser.
	ClientID int64 `json:"client_id,omitempty"`
	// ProviderID is the calling provider for provider kinds.
	ProviderID int64 `json:"provider_id,omitempty"`
}

func AllScope() Scope  { return Scope{Kind: ScopeAll} }
func NoneScope() Scope { return Scope{Kind: ScopeNone} }

func (s Scope) IsZero() bool {
	return s.Kind == ""
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeOwnedByClientUser:
		return fmt.Sprintf("%s(client=%d)", s.Kind, s.ClientID)
	case ScopeAll, ScopeNone, "":
		return string(s.Kind)
	default:
		return fmt.Sprintf("%s(provider=%d)", s.Kind, s.ProviderID)
	}
}

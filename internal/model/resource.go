package model

type Resource string

const (
	ResourceClients      Resource = "clients"
	ResourceAppointments Resource = "appointments"
	ResourcePayments     Resource = "payments"
	ResourceAuditLogs    Resource = "audit_logs"
)

func (r Resource) Valid() bool {
	switch r {
	case ResourceClients, ResourceAppointments, ResourcePayments, ResourceAuditLogs:
		return true
	}
	return false
}

type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	// ActionCreate is the creation of a gateway payment.
	ActionCreate     Action = "create"
	ActionRecordCash Action = "record_cash"
	ActionConfirm    Action = "confirm"
	ActionCancel     Action = "cancel"
)

// IsRead reports whether a denied decision should resolve to an empty scope
// instead of an authorization error.
func (a Action) IsRead() bool {
	return a == ActionRead
}

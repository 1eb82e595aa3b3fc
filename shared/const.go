package shared

const (
	UserID = "user_id"

	EventTypeLimited   = "limited"
	EventTypeUnlimited = "unlimited"

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	// Capabilities gating state-changing event operations. A superadmin
	// implies every capability.
	CapEventsManagement   = "events:manage"
	CapEventRegistrations = "events:registrations"
	CapEventUsers         = "events:users"
	CapBarcodeScanner     = "events:scanner"
)

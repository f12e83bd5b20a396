package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	// Subject is the acting identity, or the guest email when anonymous.
	Subject   string
	ConsentID string
	Action    string
	Source    string
	Reason    string
}

// Audit event actions
const (
	ActionConsentRecorded = "consent_recorded"
	ActionConsentRevoked  = "consent_revoked"
	ActionAccessDenied    = "consent_access_denied"
)

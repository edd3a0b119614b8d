package subscription

// Status is the provider-neutral payment status vocabulary the reconciler
// operates on. Controllers normalize each provider's wire values into it.
const (
	StatusComplete  = "complete"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusRevoked   = "revoked"
)

// Outcome names the terminal state of applying one notification.
type Outcome string

const (
	OutcomeApplied             Outcome = "applied"
	OutcomeRevoked             Outcome = "revoked"
	OutcomeIgnored             Outcome = "ignored"
	OutcomeRejectedMissingUser Outcome = "rejected_missing_user"
)

// Notification is the normalized, ephemeral shape of one provider
// notification. It is consumed once and never persisted as-is; the raw
// payload lands in the webhook event ledger.
type Notification struct {
	Provider       string
	UserID         uint
	Status         string
	PaymentID      string
	SubscriptionID string
}

// EventInput is the normalized input for webhook event persistence.
type EventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

package domain

import "time"

// Thresholds carries every configured SLA limit as durations. The monitor is
// constructed with an instance of this, never reading ambient configuration,
// so tests can feed synthetic thresholds and a synthetic clock.
type Thresholds struct {
	// FirstContact is the maximum age of a case without a recorded first
	// client contact.
	FirstContact time.Duration

	// Payment overdue ladder, measured past the due date.
	PaymentTier1 time.Duration
	PaymentTier2 time.Duration
	PaymentTier3 time.Duration

	// Contract signature ladder, measured from the moment the contract was
	// sent. Tier one fires on the send day itself.
	SignatureTier2 time.Duration
	SignatureTier3 time.Duration
	SignatureTier4 time.Duration
	// SignatureCancel is the tier that recommends auto-cancellation.
	SignatureCancel time.Duration

	// RequirementReply is the maximum age of an open requirement without a
	// prepared response.
	RequirementReply time.Duration
}

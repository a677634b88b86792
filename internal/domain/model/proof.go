package model

import "time"

// ReviewOutcome is the one-time admin verdict on a payment proof.
type ReviewOutcome string

const (
	ReviewOutcomePending  ReviewOutcome = "PENDING"
	ReviewOutcomeApproved ReviewOutcome = "APPROVED"
	ReviewOutcomeRejected ReviewOutcome = "REJECTED"
)

// PaymentProof is customer-submitted evidence of an out-of-band bank
// transfer. Immutable after creation except for the review outcome, which is
// set exactly once, and the order linkage, which may be filled in when the
// reconciliation engine synthesizes an order for the submission.
type PaymentProof struct {
	ID            int64
	UserID        *int64
	Name          string
	Email         string
	Message       string
	Image         string
	ProductID     *int64
	OrderID       *int64
	ReviewOutcome ReviewOutcome
	ReviewedAt    *time.Time
	CreatedAt     time.Time

	// Resolved for listings, never persisted with the proof row.
	ProductName       string
	OrderTotal        *int64
	OrderPaymentState PaymentState
}

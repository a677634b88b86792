package model

import "time"

// ChargeInit is the gateway's answer to a charge initialization: where to
// send the customer and the reference the webhook will later carry.
type ChargeInit struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// ChargeStatus mirrors the gateway's view of a transaction, either delivered
// by webhook or fetched through verification.
type ChargeStatus string

const (
	ChargeStatusSuccess   ChargeStatus = "success"
	ChargeStatusFailed    ChargeStatus = "failed"
	ChargeStatusAbandoned ChargeStatus = "abandoned"
	ChargeStatusPending   ChargeStatus = "pending"
)

// ChargeResult is an authoritative settlement signal for a single reference.
type ChargeResult struct {
	Reference string
	Status    ChargeStatus
	Channel   string
	PaidAt    *time.Time
}

package dto

import "time"

// ProofResponse is the admin view of a submitted payment proof.
type ProofResponse struct {
	ID            int64      `json:"id"`
	UserID        *int64     `json:"user_id,omitempty"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Message       string     `json:"message,omitempty"`
	Image         string     `json:"image"`
	ProductID     *int64     `json:"product_id,omitempty"`
	OrderID       *int64     `json:"order_id,omitempty"`
	ReviewOutcome string     `json:"review_outcome"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	ProductName       string `json:"product_name,omitempty"`
	OrderTotal        *int64 `json:"order_total,omitempty"`
	OrderPaymentState string `json:"order_payment_state,omitempty"`
}

// ReviewRequest carries the admin verdict on a proof.
type ReviewRequest struct {
	Outcome string `json:"outcome"`
}

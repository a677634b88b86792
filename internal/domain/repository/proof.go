package repository

import (
	"context"

	"github.com/ngmstore/storefront/internal/domain/model"
)

// ProofSubmission carries everything recorded at proof upload time. Order
// synthesis is never inferred here; the reconciliation engine decides that.
type ProofSubmission struct {
	UserID    *int64
	Name      string
	Email     string
	Message   string
	Image     string
	ProductID *int64
	OrderID   *int64
}

// ProofRepository describes persistence operations for payment proofs.
type ProofRepository interface {
	Create(ctx context.Context, submission ProofSubmission) (*model.PaymentProof, error)
	GetByID(ctx context.Context, id int64) (*model.PaymentProof, error)
	List(ctx context.Context) ([]model.PaymentProof, error)
	LinkOrder(ctx context.Context, proofID, orderID int64) error
	// MarkReviewed is a one-time transition from PENDING; a false result with
	// nil error means another review already landed.
	MarkReviewed(ctx context.Context, proofID int64, outcome model.ReviewOutcome) (bool, error)
	// MarkReviewedForOrder closes every pending proof linked to the order.
	MarkReviewedForOrder(ctx context.Context, orderID int64, outcome model.ReviewOutcome) error
}

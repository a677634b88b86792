package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ngmstore/storefront/internal/adapter/paystack"
	domainErrors "github.com/ngmstore/storefront/internal/domain/errors"
	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/domain/repository"
	"github.com/ngmstore/storefront/internal/notify"
	pkgAuth "github.com/ngmstore/storefront/internal/pkg/auth"
)

// ReconciliationUseCase is the single place where settlement signals become
// order state. Every signal path, gateway webhook, proof review, order
// approval and the background verifier, lands on the same conditional
// repository updates, so concurrent and repeated signals collapse into one
// winner and the rest become no-ops.
type ReconciliationUseCase struct {
	orders   repository.OrderRepository
	proofs   repository.ProofRepository
	products repository.ProductRepository
	users    repository.UserRepository
	gateway  paystack.Client
	sink     notify.Sink
	logger   *slog.Logger
}

// NewReconciliationUseCase constructs ReconciliationUseCase.
func NewReconciliationUseCase(
	orders repository.OrderRepository,
	proofs repository.ProofRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	gateway paystack.Client,
	sink notify.Sink,
	logger *slog.Logger,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		orders:   orders,
		proofs:   proofs,
		products: products,
		users:    users,
		gateway:  gateway,
		sink:     sink,
		logger:   logger,
	}
}

// InitializeCharge asks the gateway for a hosted payment page for the order.
// Email and amount are taken from the stored order, never from the caller.
// The generated reference is persisted before the gateway call so a webhook
// can always find its order.
func (u *ReconciliationUseCase) InitializeCharge(ctx context.Context, identity pkgAuth.Identity, orderID int64) (*model.ChargeInit, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != identity.UserID && !identity.IsAdmin {
		return nil, domainErrors.ErrForbidden
	}
	if order.PaymentState != model.PaymentStateUnpaid {
		return nil, fmt.Errorf("%w: order %d is %s", domainErrors.ErrInvalidTransition, order.ID, order.PaymentState)
	}

	reference := order.GatewayReference
	if reference == "" {
		reference = "NGM-" + uuid.NewString()
		if err := u.orders.SetGatewayReference(ctx, order.ID, reference); err != nil {
			return nil, err
		}
	}

	usr, err := u.users.GetByID(ctx, order.UserID)
	if err != nil {
		return nil, err
	}

	return u.gateway.Initialize(ctx, usr.Email, order.GrandTotal, reference)
}

// SettleCharge applies an authoritative gateway result to the matching order.
// Unknown references and transitions that already happened are logged and
// swallowed; the gateway must not see them as failures and retry forever.
func (u *ReconciliationUseCase) SettleCharge(ctx context.Context, result model.ChargeResult) error {
	order, err := u.orders.GetByGatewayReference(ctx, result.Reference)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("settlement for unknown reference", slog.String("reference", result.Reference))
			return nil
		}
		return err
	}

	switch result.Status {
	case model.ChargeStatusSuccess:
		evidence := model.PaymentEvidence{
			GatewayReference: result.Reference,
			GatewayChannel:   result.Channel,
		}
		if result.PaidAt != nil {
			evidence.PaidAt = *result.PaidAt
		}
		applied, err := u.orders.MarkPaid(ctx, order.ID, evidence)
		if err != nil {
			if errors.Is(err, domainErrors.ErrInvalidTransition) {
				u.logger.Warn("gateway success for settled order",
					slog.Int64("order", order.ID), slog.String("state", string(order.PaymentState)))
				return nil
			}
			return err
		}
		if applied {
			u.logger.Info("order settled by gateway",
				slog.Int64("order", order.ID), slog.String("reference", result.Reference))
			u.notifyPaid(ctx, order.ID)
		}
	case model.ChargeStatusFailed, model.ChargeStatusAbandoned:
		applied, err := u.orders.MarkFailed(ctx, order.ID)
		if err != nil {
			return err
		}
		if applied {
			u.logger.Info("order failed by gateway",
				slog.Int64("order", order.ID), slog.String("reference", result.Reference))
		}
	default:
		// pending and anything unrecognized: the verifier will look again.
	}
	return nil
}

// SettleWebhook verifies the webhook signature, then settles a charge event.
// Only charge events are acted on; everything else is acknowledged and
// dropped.
func (u *ReconciliationUseCase) SettleWebhook(ctx context.Context, body []byte, signature string, event string, result model.ChargeResult) error {
	if !u.gateway.ValidSignature(body, signature) {
		return domainErrors.ErrInvalidSignature
	}
	switch event {
	case "charge.success":
		result.Status = model.ChargeStatusSuccess
	case "charge.failed":
		result.Status = model.ChargeStatusFailed
	default:
		u.logger.Info("ignoring webhook event", slog.String("event", event))
		return nil
	}
	return u.SettleCharge(ctx, result)
}

// ProofRequest is a payment proof upload. UserID is set for authenticated
// submissions; OrderID ties the proof to an existing order, ProductID to a
// single catalog entry when no order exists yet.
type ProofRequest struct {
	UserID    *int64
	Name      string
	Email     string
	Message   string
	Image     string
	ProductID *int64
	OrderID   *int64
}

// SubmitProof records a proof and moves its order to PENDING_REVIEW. When the
// submission names a product but no order, an order is synthesized for it so
// review always has an order to settle.
func (u *ReconciliationUseCase) SubmitProof(ctx context.Context, req ProofRequest) (*model.PaymentProof, error) {
	if strings.TrimSpace(req.Name) == "" || req.Image == "" {
		return nil, fmt.Errorf("%w: proof name and image are required", domainErrors.ErrValidation)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, fmt.Errorf("%w: proof email is invalid", domainErrors.ErrValidation)
	}
	if req.OrderID != nil {
		if _, err := u.orders.GetByID(ctx, *req.OrderID); err != nil {
			return nil, fmt.Errorf("order %d: %w", *req.OrderID, err)
		}
	}

	proof, err := u.proofs.Create(ctx, repository.ProofSubmission{
		UserID:    req.UserID,
		Name:      req.Name,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Message:   req.Message,
		Image:     req.Image,
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
	})
	if err != nil {
		return nil, err
	}

	switch {
	case req.OrderID != nil:
		u.moveToReview(ctx, *req.OrderID, proof.Image)
	case req.ProductID != nil && req.UserID != nil:
		order, err := u.synthesizeOrder(ctx, *req.UserID, *req.ProductID, req.Name)
		if err != nil {
			u.logger.Error("order synthesis for proof failed",
				slog.Int64("proof", proof.ID), slog.String("error", err.Error()))
			return proof, nil
		}
		if err := u.proofs.LinkOrder(ctx, proof.ID, order.ID); err != nil {
			return nil, err
		}
		proof.OrderID = &order.ID
		u.moveToReview(ctx, order.ID, proof.Image)
	}
	return proof, nil
}

// synthesizeOrder records a one-item order for a proof that arrived without
// one. Shipping details beyond the buyer's name are collected later by the
// store operator.
func (u *ReconciliationUseCase) synthesizeOrder(ctx context.Context, userID, productID int64, buyerName string) (*model.Order, error) {
	product, err := u.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	items := []model.LineItem{{
		ProductID: product.ID,
		Name:      product.Name,
		Quantity:  1,
		UnitPrice: product.Price,
	}}
	return u.orders.Create(ctx, userID, items, model.ShippingInfo{Name: buyerName}, product.Price, 0)
}

func (u *ReconciliationUseCase) moveToReview(ctx context.Context, orderID int64, proofImage string) {
	applied, err := u.orders.MarkPendingReview(ctx, orderID, proofImage)
	if err != nil {
		u.logger.Warn("order not moved to review",
			slog.Int64("order", orderID), slog.String("error", err.Error()))
		return
	}
	if !applied {
		u.logger.Info("order already past review", slog.Int64("order", orderID))
	}
}

// ListProofs returns all proofs, newest first, with the linked product and
// order resolved so reviewers see what a submission claims to pay for.
func (u *ReconciliationUseCase) ListProofs(ctx context.Context) ([]model.PaymentProof, error) {
	proofs, err := u.proofs.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range proofs {
		if id := proofs[i].ProductID; id != nil {
			if product, err := u.products.GetByID(ctx, *id); err == nil {
				proofs[i].ProductName = product.Name
			}
		}
		if id := proofs[i].OrderID; id != nil {
			if order, err := u.orders.GetByID(ctx, *id); err == nil {
				total := order.GrandTotal
				proofs[i].OrderTotal = &total
				proofs[i].OrderPaymentState = order.PaymentState
			}
		}
	}
	return proofs, nil
}

// ReviewProof records the admin verdict on a proof exactly once and settles
// the linked order accordingly.
func (u *ReconciliationUseCase) ReviewProof(ctx context.Context, proofID int64, outcome model.ReviewOutcome) (*model.PaymentProof, error) {
	if outcome != model.ReviewOutcomeApproved && outcome != model.ReviewOutcomeRejected {
		return nil, fmt.Errorf("%w: outcome must be APPROVED or REJECTED", domainErrors.ErrValidation)
	}

	proof, err := u.proofs.GetByID(ctx, proofID)
	if err != nil {
		return nil, err
	}

	applied, err := u.proofs.MarkReviewed(ctx, proofID, outcome)
	if err != nil {
		return nil, err
	}
	if !applied {
		// The stored verdict goes back with the error so retries can see it.
		return proof, domainErrors.ErrAlreadyReviewed
	}
	proof.ReviewOutcome = outcome

	if proof.OrderID == nil {
		return proof, nil
	}

	switch outcome {
	case model.ReviewOutcomeApproved:
		applied, err := u.orders.MarkPaid(ctx, *proof.OrderID, model.PaymentEvidence{ProofImage: proof.Image})
		if err != nil {
			return nil, err
		}
		if applied {
			u.logger.Info("order settled by proof review",
				slog.Int64("order", *proof.OrderID), slog.Int64("proof", proof.ID))
			u.notifyPaid(ctx, *proof.OrderID)
		}
	case model.ReviewOutcomeRejected:
		// Never demotes a PAID order; the gateway may have won in between.
		if _, err := u.orders.MarkFailed(ctx, *proof.OrderID); err != nil {
			return nil, err
		}
	}
	return proof, nil
}

// ApproveOrder is the admin shortcut that settles an order directly. Linked
// pending proofs are closed as approved so they drop off the review queue.
func (u *ReconciliationUseCase) ApproveOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	applied, err := u.orders.MarkPaid(ctx, orderID, model.PaymentEvidence{ProofImage: order.ProofImage})
	if err != nil {
		return nil, err
	}
	if applied {
		u.logger.Info("order settled by admin approval", slog.Int64("order", orderID))
		u.notifyPaid(ctx, orderID)
	}
	if err := u.proofs.MarkReviewedForOrder(ctx, orderID, model.ReviewOutcomeApproved); err != nil {
		u.logger.Warn("closing linked proofs failed",
			slog.Int64("order", orderID), slog.String("error", err.Error()))
	}

	return u.orders.GetByID(ctx, orderID)
}

// Ship advances fulfillment to SHIPPED. Only PAID orders move; a repeated
// call is a no-op.
func (u *ReconciliationUseCase) Ship(ctx context.Context, orderID int64) (*model.Order, error) {
	if _, err := u.orders.AdvanceFulfillment(ctx, orderID, model.FulfillmentStateShipped); err != nil {
		return nil, err
	}
	return u.orders.GetByID(ctx, orderID)
}

// Deliver advances fulfillment to DELIVERED and sends the delivery notice at
// most once, no matter how many calls race.
func (u *ReconciliationUseCase) Deliver(ctx context.Context, orderID int64) (*model.Order, error) {
	if _, err := u.orders.AdvanceFulfillment(ctx, orderID, model.FulfillmentStateDelivered); err != nil {
		return nil, err
	}

	claimed, err := u.orders.ClaimDeliveryNotification(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if claimed {
		order, err := u.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if usr, err := u.users.GetByID(ctx, order.UserID); err != nil {
			u.logger.Error("delivery notification skipped",
				slog.Int64("order", orderID), slog.String("error", err.Error()))
		} else if err := u.sink.OrderDelivered(ctx, usr.Email, usr.Name, order); err != nil {
			u.logger.Error("delivery notification failed",
				slog.Int64("order", orderID), slog.String("error", err.Error()))
		}
	}

	return u.orders.GetByID(ctx, orderID)
}

// VerifyReference fetches the gateway's view of a reference and settles it.
// Used by the background verifier for orders whose webhook never arrived.
func (u *ReconciliationUseCase) VerifyReference(ctx context.Context, reference string) error {
	result, err := u.gateway.Verify(ctx, reference)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("gateway has no transaction for reference", slog.String("reference", reference))
			return nil
		}
		return err
	}
	return u.SettleCharge(ctx, *result)
}

// UnsettledOrders claims a batch of stale UNPAID orders with gateway
// references for verification.
func (u *ReconciliationUseCase) UnsettledOrders(ctx context.Context, olderThan time.Duration, limit int) ([]model.Order, error) {
	return u.orders.SelectUnsettledBatch(ctx, olderThan, limit)
}

// notifyPaid sends the payment confirmation at most once per order. The
// claim happens before the send; a crash in between loses the email rather
// than ever duplicating it.
func (u *ReconciliationUseCase) notifyPaid(ctx context.Context, orderID int64) {
	claimed, err := u.orders.ClaimPaymentNotification(ctx, orderID)
	if err != nil {
		u.logger.Error("payment notification claim failed",
			slog.Int64("order", orderID), slog.String("error", err.Error()))
		return
	}
	if !claimed {
		return
	}
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		u.logger.Error("payment notification skipped",
			slog.Int64("order", orderID), slog.String("error", err.Error()))
		return
	}
	usr, err := u.users.GetByID(ctx, order.UserID)
	if err != nil {
		u.logger.Error("payment notification skipped",
			slog.Int64("order", orderID), slog.String("error", err.Error()))
		return
	}
	if err := u.sink.OrderConfirmed(ctx, usr.Email, usr.Name, order); err != nil {
		u.logger.Error("payment notification failed",
			slog.Int64("order", orderID), slog.String("error", err.Error()))
	}
}

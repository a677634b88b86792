package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ngmstore/storefront/internal/adapter/paystack"
	domainErrors "github.com/ngmstore/storefront/internal/domain/errors"
	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/server/http/dto"
)

const maxWebhookBytes = 1 << 20

// PaymentHandler manages gateway charge initialization and the webhook.
type PaymentHandler struct {
	facade PaymentFacade
	logger *slog.Logger
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{facade: facade, logger: logger}
}

// Initialize handles POST /api/payments/initialize.
func (h *PaymentHandler) Initialize(c *gin.Context) {
	var req dto.InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID < 1 {
		c.Status(http.StatusBadRequest)
		return
	}

	init, err := h.facade.InitializeCharge(c.Request.Context(), CurrentIdentity(c), req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrForbidden):
			c.Status(http.StatusForbidden)
		case errors.Is(err, domainErrors.ErrInvalidTransition):
			c.Status(http.StatusConflict)
		case errors.Is(err, domainErrors.ErrGatewayUnavailable):
			c.Status(http.StatusBadGateway)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, dto.InitializeResponse{
		AuthorizationURL: init.AuthorizationURL,
		AccessCode:       init.AccessCode,
		Reference:        init.Reference,
	})
}

// Webhook handles POST /api/payments/webhook. The signature covers the raw
// body, so the body is read before any decoding. After a valid signature the
// gateway always gets 200; anything else makes it retry forever.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var event dto.WebhookEvent
	if jsonErr := json.Unmarshal(body, &event); jsonErr != nil {
		event = dto.WebhookEvent{}
	}

	result := model.ChargeResult{
		Reference: event.Data.Reference,
		Status:    model.ChargeStatus(event.Data.Status),
		Channel:   event.Data.Channel,
		PaidAt:    event.Data.PaidAt,
	}
	err = h.facade.SettleWebhook(c.Request.Context(), body, c.GetHeader(paystack.SignatureHeader), event.Event, result)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidSignature) {
			c.Status(http.StatusUnauthorized)
			return
		}
		// A non-2xx here would make the gateway redeliver an event we have
		// already authenticated. Settlement is idempotent, so log and accept.
		h.logger.Error("webhook settlement failed",
			slog.String("event", event.Event),
			slog.String("reference", event.Data.Reference),
			slog.String("error", err.Error()),
		)
		c.Status(http.StatusOK)
		return
	}
	c.Status(http.StatusOK)
}

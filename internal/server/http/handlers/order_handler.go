package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/ngmstore/storefront/internal/domain/errors"
	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/domain/repository"
	"github.com/ngmstore/storefront/internal/server/http/dto"
	"github.com/ngmstore/storefront/internal/usecase"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	identity := CurrentIdentity(c)

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	items := make([]usecase.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, usecase.CheckoutItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	shipping := model.ShippingInfo{
		Name:    req.Shipping.Name,
		Phone:   req.Shipping.Phone,
		Address: req.Shipping.Address,
		Country: req.Shipping.Country,
	}

	order, err := h.facade.Checkout(c.Request.Context(), identity.UserID, items, shipping, req.ShippingCost)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrValidation):
			c.Status(http.StatusBadRequest)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// Mine handles GET /api/orders/myorders.
func (h *OrderHandler) Mine(c *gin.Context) {
	identity := CurrentIdentity(c)

	orders, err := h.facade.MyOrders(c.Request.Context(), identity.UserID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// List handles GET /api/orders for admins, optionally narrowed by payment
// state.
func (h *OrderHandler) List(c *gin.Context) {
	var filter repository.OrderFilter
	if state := c.Query("payment_state"); state != "" {
		ps := model.PaymentState(state)
		filter.PaymentState = &ps
	}

	orders, err := h.facade.Orders(c.Request.Context(), filter)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.Order(c.Request.Context(), id, CurrentIdentity(c))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrForbidden):
			c.Status(http.StatusForbidden)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Approve handles PUT /api/orders/:id/approve.
func (h *OrderHandler) Approve(c *gin.Context) {
	h.transition(c, h.facade.ApproveOrder)
}

// Ship handles PUT /api/orders/:id/ship.
func (h *OrderHandler) Ship(c *gin.Context) {
	h.transition(c, h.facade.ShipOrder)
}

// Deliver handles PUT /api/orders/:id/deliver.
func (h *OrderHandler) Deliver(c *gin.Context) {
	h.transition(c, h.facade.DeliverOrder)
}

func (h *OrderHandler) transition(c *gin.Context, op func(ctx context.Context, orderID int64) (*model.Order, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := op(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrInvalidTransition):
			c.Status(http.StatusConflict)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	return response
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	items := make([]dto.LineItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.LineItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return dto.OrderResponse{
		ID:     order.ID,
		UserID: order.UserID,
		Items:  items,
		Shipping: dto.ShippingRequest{
			Name:    order.Shipping.Name,
			Phone:   order.Shipping.Phone,
			Address: order.Shipping.Address,
			Country: order.Shipping.Country,
		},
		ItemsSubtotal:    order.ItemsSubtotal,
		ShippingCost:     order.ShippingCost,
		GrandTotal:       order.GrandTotal,
		PaymentState:     string(order.PaymentState),
		FulfillmentState: string(order.FulfillmentState),
		GatewayReference: order.GatewayReference,
		GatewayChannel:   order.GatewayChannel,
		ProofImage:       order.ProofImage,
		PaidAt:           order.PaidAt,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/ngmstore/storefront/internal/domain/errors"
	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/server/http/dto"
	"github.com/ngmstore/storefront/internal/server/http/middleware"
	"github.com/ngmstore/storefront/internal/upload"
	"github.com/ngmstore/storefront/internal/usecase"
)

const maxProofImageBytes = 5 << 20

// ProofHandler manages payment proof submission and review.
type ProofHandler struct {
	facade  PaymentFacade
	uploads upload.Store
}

// NewProofHandler constructs ProofHandler.
func NewProofHandler(facade PaymentFacade, uploads upload.Store) *ProofHandler {
	return &ProofHandler{facade: facade, uploads: uploads}
}

// Submit handles POST /api/payment-proofs. The body is multipart form data
// with a screenshot file plus submitter fields; guests may submit,
// authenticated callers get the proof tied to their account. The legacy
// "image" field name is still accepted from older clients.
func (h *ProofHandler) Submit(c *gin.Context) {
	file, header, err := c.Request.FormFile("screenshot")
	if err != nil {
		file, header, err = c.Request.FormFile("image")
	}
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	defer file.Close()
	if header.Size > maxProofImageBytes {
		c.Status(http.StatusRequestEntityTooLarge)
		return
	}

	image, err := h.uploads.Save(header.Filename, file)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	req := usecase.ProofRequest{
		Name:      c.PostForm("name"),
		Email:     c.PostForm("email"),
		Message:   c.PostForm("message"),
		Image:     image,
		ProductID: optionalFormID(c, "product", "product_id"),
		OrderID:   optionalFormID(c, "order", "order_id"),
	}
	if _, ok := c.Get(middleware.IdentityContextKey); ok {
		identity := CurrentIdentity(c)
		req.UserID = &identity.UserID
	}

	proof, err := h.facade.SubmitProof(c.Request.Context(), req)
	if err != nil {
		// Rejected submissions must not leave the file behind.
		_ = h.uploads.Remove(image)
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
	c.JSON(http.StatusCreated, toProofResponse(*proof))
}

// List handles GET /api/payment-proofs for admins.
func (h *ProofHandler) List(c *gin.Context) {
	proofs, err := h.facade.Proofs(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.ProofResponse, 0, len(proofs))
	for _, p := range proofs {
		response = append(response, toProofResponse(p))
	}
	c.JSON(http.StatusOK, response)
}

// Review handles PUT /api/payment-proofs/:id/review. A repeated review is
// answered with the proof as it stands, not an error; review is one-shot by
// construction and retries are expected.
func (h *ProofHandler) Review(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	proof, err := h.facade.ReviewProof(c.Request.Context(), id, model.ReviewOutcome(req.Outcome))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrAlreadyReviewed) && proof != nil:
			c.JSON(http.StatusOK, toProofResponse(*proof))
		case errors.Is(err, domainErrors.ErrValidation):
			c.Status(http.StatusBadRequest)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrInvalidTransition):
			c.Status(http.StatusConflict)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, toProofResponse(*proof))
}

func optionalFormID(c *gin.Context, names ...string) *int64 {
	for _, name := range names {
		raw := c.PostForm(name)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			return nil
		}
		return &id
	}
	return nil
}

func toProofResponse(p model.PaymentProof) dto.ProofResponse {
	return dto.ProofResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		Name:          p.Name,
		Email:         p.Email,
		Message:       p.Message,
		Image:         p.Image,
		ProductID:     p.ProductID,
		OrderID:       p.OrderID,
		ReviewOutcome: string(p.ReviewOutcome),
		ReviewedAt:    p.ReviewedAt,
		CreatedAt:     p.CreatedAt,

		ProductName:       p.ProductName,
		OrderTotal:        p.OrderTotal,
		OrderPaymentState: string(p.OrderPaymentState),
	}
}

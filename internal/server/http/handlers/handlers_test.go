package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/ngmstore/storefront/internal/domain/errors"
	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/domain/repository"
	pkgAuth "github.com/ngmstore/storefront/internal/pkg/auth"
	"github.com/ngmstore/storefront/internal/server/http/dto"
	"github.com/ngmstore/storefront/internal/server/http/middleware"
	testhelpers "github.com/ngmstore/storefront/internal/test"
	"github.com/ngmstore/storefront/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func identityInjector(identity pkgAuth.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityContextKey, identity)
		c.Next()
	}
}

func perform(engine *gin.Engine, method, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func performJSON(engine *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	return perform(engine, method, target, "application/json", strings.NewReader(body))
}

func TestRegisterStatuses(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		stub   testhelpers.AuthFacadeStub
		status int
	}{
		{"created", `{"name":"Ada","email":"ada@example.com","password":"secret"}`, testhelpers.AuthFacadeStub{}, http.StatusCreated},
		{"malformed body", `{`, testhelpers.AuthFacadeStub{}, http.StatusBadRequest},
		{"validation", `{"name":"","email":"x@y.z","password":"p"}`, testhelpers.AuthFacadeStub{
			RegisterFn: func(context.Context, string, string, string) (*model.User, string, error) {
				return nil, "", domainErrors.ErrValidation
			},
		}, http.StatusBadRequest},
		{"duplicate", `{"name":"Ada","email":"ada@example.com","password":"secret"}`, testhelpers.AuthFacadeStub{
			RegisterFn: func(context.Context, string, string, string) (*model.User, string, error) {
				return nil, "", domainErrors.ErrAlreadyExists
			},
		}, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := gin.New()
			engine.POST("/api/users/register", NewAuthHandler(tc.stub).Register)
			rec := performJSON(engine, http.MethodPost, "/api/users/register", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestRegisterSetsAuthCookie(t *testing.T) {
	engine := gin.New()
	engine.POST("/register", NewAuthHandler(testhelpers.AuthFacadeStub{}).Register)

	rec := performJSON(engine, http.MethodPost, "/register", `{"name":"Ada","email":"ada@example.com","password":"secret"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "ngmstore_token=token") {
		t.Fatalf("auth cookie missing: %q", rec.Header().Get("Set-Cookie"))
	}

	var resp dto.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "token" || resp.User.Email != "ada@example.com" {
		t.Fatalf("unexpected auth response: %+v", resp)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	engine := gin.New()
	engine.POST("/login", NewAuthHandler(testhelpers.AuthFacadeStub{
		AuthenticateFn: func(context.Context, string, string) (*model.User, string, error) {
			return nil, "", domainErrors.ErrInvalidCredentials
		},
	}).Login)

	rec := performJSON(engine, http.MethodPost, "/login", `{"email":"ada@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestOrderTransitionStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"applied", nil, http.StatusOK},
		{"missing", domainErrors.ErrNotFound, http.StatusNotFound},
		{"unpaid", domainErrors.ErrInvalidTransition, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := testhelpers.OrderFacadeStub{}
			if tc.err != nil {
				stub.ShipFn = func(context.Context, int64) (*model.Order, error) { return nil, tc.err }
			}
			engine := gin.New()
			engine.PUT("/orders/:id/ship", NewOrderHandler(stub).Ship)
			rec := performJSON(engine, http.MethodPut, "/orders/5/ship", "")
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}

	engine := gin.New()
	engine.PUT("/orders/:id/ship", NewOrderHandler(testhelpers.OrderFacadeStub{}).Ship)
	if rec := performJSON(engine, http.MethodPut, "/orders/zero/ship", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestOrderGetOwnership(t *testing.T) {
	stub := testhelpers.OrderFacadeStub{
		OrderFn: func(ctx context.Context, orderID int64, identity pkgAuth.Identity) (*model.Order, error) {
			if identity.UserID != 7 {
				return nil, domainErrors.ErrForbidden
			}
			return &model.Order{ID: orderID, UserID: 7}, nil
		},
	}

	owner := gin.New()
	owner.GET("/orders/:id", identityInjector(pkgAuth.Identity{UserID: 7}), NewOrderHandler(stub).Get)
	if rec := performJSON(owner, http.MethodGet, "/orders/1", ""); rec.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d", rec.Code)
	}

	stranger := gin.New()
	stranger.GET("/orders/:id", identityInjector(pkgAuth.Identity{UserID: 8}), NewOrderHandler(stub).Get)
	if rec := performJSON(stranger, http.MethodGet, "/orders/1", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("stranger: expected 403, got %d", rec.Code)
	}
}

func TestCheckoutStatuses(t *testing.T) {
	engine := gin.New()
	engine.POST("/orders", identityInjector(pkgAuth.Identity{UserID: 1}), NewOrderHandler(testhelpers.OrderFacadeStub{
		CheckoutFn: func(context.Context, int64, []usecase.CheckoutItem, model.ShippingInfo, int64) (*model.Order, error) {
			return nil, domainErrors.ErrNotFound
		},
	}).Create)

	body := `{"items":[{"product_id":99,"quantity":1}],"shipping":{"name":"a","phone":"b","address":"c","country":"d"},"shipping_cost":0}`
	if rec := performJSON(engine, http.MethodPost, "/orders", body); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown product: expected 422, got %d", rec.Code)
	}
}

func TestInitializeStatuses(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"ok", `{"order_id":3}`, nil, http.StatusOK},
		{"zero order id", `{"order_id":0}`, nil, http.StatusBadRequest},
		{"not owner", `{"order_id":3}`, domainErrors.ErrForbidden, http.StatusForbidden},
		{"already settled", `{"order_id":3}`, domainErrors.ErrInvalidTransition, http.StatusConflict},
		{"gateway down", `{"order_id":3}`, domainErrors.ErrGatewayUnavailable, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := testhelpers.PaymentFacadeStub{}
			if tc.err != nil {
				stub.InitializeFn = func(context.Context, pkgAuth.Identity, int64) (*model.ChargeInit, error) {
					return nil, tc.err
				}
			}
			engine := gin.New()
			engine.POST("/payments/initialize", identityInjector(pkgAuth.Identity{UserID: 1}), NewPaymentHandler(stub, discardLogger()).Initialize)
			rec := performJSON(engine, http.MethodPost, "/payments/initialize", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestWebhookStatuses(t *testing.T) {
	t.Run("invalid signature", func(t *testing.T) {
		engine := gin.New()
		engine.POST("/webhook", NewPaymentHandler(testhelpers.PaymentFacadeStub{
			SettleWebhookFn: func(context.Context, []byte, string, string, model.ChargeResult) error {
				return domainErrors.ErrInvalidSignature
			},
		}, discardLogger()).Webhook)
		rec := performJSON(engine, http.MethodPost, "/webhook", `{"event":"charge.success"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("settled", func(t *testing.T) {
		var gotEvent string
		var gotBody []byte
		engine := gin.New()
		engine.POST("/webhook", NewPaymentHandler(testhelpers.PaymentFacadeStub{
			SettleWebhookFn: func(ctx context.Context, body []byte, signature, event string, result model.ChargeResult) error {
				gotEvent, gotBody = event, body
				return nil
			},
		}, discardLogger()).Webhook)

		raw := `{"event":"charge.success","data":{"reference":"NGM-1","status":"success","channel":"card"}}`
		rec := performJSON(engine, http.MethodPost, "/webhook", raw)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotEvent != "charge.success" {
			t.Fatalf("event not forwarded: %q", gotEvent)
		}
		if string(gotBody) != raw {
			t.Fatalf("raw body must be forwarded unmodified for signature checks")
		}
	})

	t.Run("garbage body still answered", func(t *testing.T) {
		engine := gin.New()
		engine.POST("/webhook", NewPaymentHandler(testhelpers.PaymentFacadeStub{}, discardLogger()).Webhook)
		rec := performJSON(engine, http.MethodPost, "/webhook", "not json")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("settlement failure after valid signature", func(t *testing.T) {
		engine := gin.New()
		engine.POST("/webhook", NewPaymentHandler(testhelpers.PaymentFacadeStub{
			SettleWebhookFn: func(context.Context, []byte, string, string, model.ChargeResult) error {
				return errors.New("db connection lost")
			},
		}, discardLogger()).Webhook)
		rec := performJSON(engine, http.MethodPost, "/webhook", `{"event":"charge.success","data":{"reference":"NGM-1"}}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("a non-2xx would trigger gateway redelivery: expected 200, got %d", rec.Code)
		}
	})
}

type uploadStoreStub struct {
	saved   []string
	removed []string
	err     error
}

func (s *uploadStoreStub) Save(filename string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	io.Copy(io.Discard, r)
	s.saved = append(s.saved, filename)
	return "uploads/" + filename, nil
}

func (s *uploadStoreStub) Remove(path string) error {
	s.removed = append(s.removed, path)
	return nil
}

func proofForm(t *testing.T, fields map[string]string, fileField, imageName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if imageName != "" {
		part, err := writer.CreateFormFile(fileField, imageName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write([]byte("fake image bytes"))
	}
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func TestProofSubmit(t *testing.T) {
	var captured usecase.ProofRequest
	stub := testhelpers.PaymentFacadeStub{
		SubmitProofFn: func(ctx context.Context, req usecase.ProofRequest) (*model.PaymentProof, error) {
			captured = req
			return &model.PaymentProof{ID: 1, Name: req.Name, Image: req.Image}, nil
		},
	}
	uploads := &uploadStoreStub{}
	engine := gin.New()
	engine.POST("/payment-proofs", identityInjector(pkgAuth.Identity{UserID: 3}), NewProofHandler(stub, uploads).Submit)

	body, contentType := proofForm(t, map[string]string{
		"name": "Ada", "email": "ada@example.com", "order": "9",
	}, "screenshot", "receipt.png")
	rec := perform(engine, http.MethodPost, "/payment-proofs", contentType, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if captured.OrderID == nil || *captured.OrderID != 9 {
		t.Fatalf("order id not forwarded: %+v", captured)
	}
	if captured.UserID == nil || *captured.UserID != 3 {
		t.Fatalf("authenticated submitter not recorded: %+v", captured)
	}
	if captured.Image != "uploads/receipt.png" {
		t.Fatalf("stored image path not forwarded: %q", captured.Image)
	}
}

func TestProofSubmitAsGuest(t *testing.T) {
	var captured usecase.ProofRequest
	stub := testhelpers.PaymentFacadeStub{
		SubmitProofFn: func(ctx context.Context, req usecase.ProofRequest) (*model.PaymentProof, error) {
			captured = req
			return &model.PaymentProof{ID: 1}, nil
		},
	}
	engine := gin.New()
	engine.POST("/payment-proofs", NewProofHandler(stub, &uploadStoreStub{}).Submit)

	body, contentType := proofForm(t, map[string]string{"name": "Guest", "email": "g@example.com"}, "screenshot", "receipt.jpg")
	rec := perform(engine, http.MethodPost, "/payment-proofs", contentType, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if captured.UserID != nil {
		t.Fatalf("guest proof must not carry a user id: %+v", captured)
	}
}

func TestProofSubmitLegacyFieldNames(t *testing.T) {
	var captured usecase.ProofRequest
	stub := testhelpers.PaymentFacadeStub{
		SubmitProofFn: func(ctx context.Context, req usecase.ProofRequest) (*model.PaymentProof, error) {
			captured = req
			return &model.PaymentProof{ID: 1}, nil
		},
	}
	engine := gin.New()
	engine.POST("/payment-proofs", NewProofHandler(stub, &uploadStoreStub{}).Submit)

	body, contentType := proofForm(t, map[string]string{
		"name": "Ada", "email": "ada@example.com", "product_id": "4", "order_id": "9",
	}, "image", "receipt.png")
	rec := perform(engine, http.MethodPost, "/payment-proofs", contentType, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if captured.ProductID == nil || *captured.ProductID != 4 {
		t.Fatalf("product_id not accepted: %+v", captured)
	}
	if captured.OrderID == nil || *captured.OrderID != 9 {
		t.Fatalf("order_id not accepted: %+v", captured)
	}
}

func TestProofSubmitWithoutImage(t *testing.T) {
	engine := gin.New()
	engine.POST("/payment-proofs", NewProofHandler(testhelpers.PaymentFacadeStub{}, &uploadStoreStub{}).Submit)

	body, contentType := proofForm(t, map[string]string{"name": "Ada"}, "screenshot", "")
	rec := perform(engine, http.MethodPost, "/payment-proofs", contentType, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProofSubmitRemovesUploadOnRejection(t *testing.T) {
	uploads := &uploadStoreStub{}
	engine := gin.New()
	engine.POST("/payment-proofs", NewProofHandler(testhelpers.PaymentFacadeStub{
		SubmitProofFn: func(context.Context, usecase.ProofRequest) (*model.PaymentProof, error) {
			return nil, domainErrors.ErrValidation
		},
	}, uploads).Submit)

	body, contentType := proofForm(t, map[string]string{"name": "Ada"}, "screenshot", "receipt.png")
	rec := perform(engine, http.MethodPost, "/payment-proofs", contentType, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(uploads.removed) != 1 || uploads.removed[0] != "uploads/receipt.png" {
		t.Fatalf("rejected submission left its file behind: %v", uploads.removed)
	}
}

func TestProofReviewStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"approved", nil, http.StatusOK},
		{"missing", domainErrors.ErrNotFound, http.StatusNotFound},
		{"bad outcome", domainErrors.ErrValidation, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := testhelpers.PaymentFacadeStub{}
			if tc.err != nil {
				stub.ReviewProofFn = func(context.Context, int64, model.ReviewOutcome) (*model.PaymentProof, error) {
					return nil, tc.err
				}
			}
			engine := gin.New()
			engine.PUT("/payment-proofs/:id/review", NewProofHandler(stub, &uploadStoreStub{}).Review)
			rec := performJSON(engine, http.MethodPut, "/payment-proofs/2/review", `{"outcome":"APPROVED"}`)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestProofReviewRepeatReturnsStoredVerdict(t *testing.T) {
	stub := testhelpers.PaymentFacadeStub{
		ReviewProofFn: func(context.Context, int64, model.ReviewOutcome) (*model.PaymentProof, error) {
			return &model.PaymentProof{ID: 2, ReviewOutcome: model.ReviewOutcomeRejected}, domainErrors.ErrAlreadyReviewed
		},
	}
	engine := gin.New()
	engine.PUT("/payment-proofs/:id/review", NewProofHandler(stub, &uploadStoreStub{}).Review)

	rec := performJSON(engine, http.MethodPut, "/payment-proofs/2/review", `{"outcome":"APPROVED"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp dto.ProofResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != 2 || resp.ReviewOutcome != string(model.ReviewOutcomeRejected) {
		t.Fatalf("expected the verdict already on record, got %+v", resp)
	}
}

func TestProductListPaging(t *testing.T) {
	engine := gin.New()
	engine.GET("/products", NewProductHandler(testhelpers.CatalogFacadeStub{
		ListFn: func(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int, error) {
			return []model.Product{{ID: 1, Name: "Phone", Price: 1000}}, 25, nil
		},
	}).List)

	rec := performJSON(engine, http.MethodGet, "/products?page=2&page_size=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp dto.ProductListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 25 || resp.Pages != 3 || resp.Page != 2 {
		t.Fatalf("unexpected paging envelope: %+v", resp)
	}
}

package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	domainErrors "github.com/ngmstore/storefront/internal/domain/errors"
	"github.com/ngmstore/storefront/internal/domain/model"
)

// SignatureHeader carries the gateway's HMAC over the raw webhook body.
const SignatureHeader = "X-Paystack-Signature"

// TooManyRequestsError represents a rate limiting signal from the gateway.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Client exposes the gateway operations the reconciliation flow needs.
type Client interface {
	Initialize(ctx context.Context, email string, amount int64, reference string) (*model.ChargeInit, error)
	Verify(ctx context.Context, reference string) (*model.ChargeResult, error)
	ValidSignature(body []byte, signature string) bool
}

// HTTPClient implements Client against the Paystack REST API.
type HTTPClient struct {
	baseURL    *url.URL
	secretKey  string
	httpClient *http.Client
	logger     *slog.Logger
}

type initRequest struct {
	Email     string `json:"email"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference,omitempty"`
}

type initResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Reference string     `json:"reference"`
		Status    string     `json:"status"`
		Channel   string     `json:"channel"`
		PaidAt    *time.Time `json:"paid_at"`
	} `json:"data"`
}

// NewHTTPClient creates a gateway client with a bounded request timeout.
func NewHTTPClient(baseURL, secretKey string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &HTTPClient{
		baseURL:   parsed,
		secretKey: secretKey,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Initialize asks the gateway for a hosted payment page. Amount is minor
// currency units; the reference becomes the webhook lookup key.
func (c *HTTPClient) Initialize(ctx context.Context, email string, amount int64, reference string) (*model.ChargeInit, error) {
	payload, err := json.Marshal(initRequest{Email: email, Amount: amount, Reference: reference})
	if err != nil {
		return nil, err
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/transaction/initialize")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gateway initialize request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %s", domainErrors.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("gateway initialize rejected", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("%w: status %s", domainErrors.ErrGatewayUnavailable, resp.Status)
	}

	var data initResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: decode response: %s", domainErrors.ErrGatewayUnavailable, err)
	}
	if !data.Status {
		return nil, fmt.Errorf("%w: gateway declined initialization", domainErrors.ErrGatewayUnavailable)
	}

	return &model.ChargeInit{
		AuthorizationURL: data.Data.AuthorizationURL,
		AccessCode:       data.Data.AccessCode,
		Reference:        data.Data.Reference,
	}, nil
}

// Verify fetches the gateway's authoritative view of a transaction.
func (c *HTTPClient) Verify(ctx context.Context, reference string) (*model.ChargeResult, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/transaction/verify/", reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: read response: %s", domainErrors.ErrGatewayUnavailable, err)
		}
		var data verifyResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("%w: decode response: %s", domainErrors.ErrGatewayUnavailable, err)
		}
		return &model.ChargeResult{
			Reference: data.Data.Reference,
			Status:    model.ChargeStatus(data.Data.Status),
			Channel:   data.Data.Channel,
			PaidAt:    data.Data.PaidAt,
		}, nil
	case http.StatusNotFound:
		return nil, domainErrors.ErrNotFound
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, TooManyRequestsError{RetryAfter: retryAfter}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway verify failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("%w: status %s", domainErrors.ErrGatewayUnavailable, resp.Status)
	}
}

// ValidSignature checks the hex HMAC-SHA512 of the raw webhook body in
// constant time.
func (c *HTTPClient) ValidSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}

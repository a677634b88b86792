package test

import (
	"context"
	"sync"

	domainErrors "github.com/ngmstore/storefront/internal/domain/errors"
	"github.com/ngmstore/storefront/internal/domain/model"
)

// GatewayStub simulates the payment gateway client.
type GatewayStub struct {
	InitializeFn func(ctx context.Context, email string, amount int64, reference string) (*model.ChargeInit, error)
	VerifyFn     func(ctx context.Context, reference string) (*model.ChargeResult, error)
	Signature    string

	mu          sync.Mutex
	Initialized []string
	Verified    []string
}

// Initialize records the reference and returns a canned page location.
func (s *GatewayStub) Initialize(ctx context.Context, email string, amount int64, reference string) (*model.ChargeInit, error) {
	s.mu.Lock()
	s.Initialized = append(s.Initialized, reference)
	s.mu.Unlock()
	if s.InitializeFn != nil {
		return s.InitializeFn(ctx, email, amount, reference)
	}
	return &model.ChargeInit{
		AuthorizationURL: "https://checkout.example/" + reference,
		AccessCode:       "access-" + reference,
		Reference:        reference,
	}, nil
}

// Verify records the reference and delegates to the override.
func (s *GatewayStub) Verify(ctx context.Context, reference string) (*model.ChargeResult, error) {
	s.mu.Lock()
	s.Verified = append(s.Verified, reference)
	s.mu.Unlock()
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, reference)
	}
	return nil, domainErrors.ErrNotFound
}

// ValidSignature accepts the configured signature, or everything when none
// is configured.
func (s *GatewayStub) ValidSignature(body []byte, signature string) bool {
	if s.Signature == "" {
		return true
	}
	return signature == s.Signature
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTStrategyRoundTrip(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})

	token, err := strategy.IssueToken(Identity{UserID: 42, IsAdmin: true})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	identity, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if identity.UserID != 42 || !identity.IsAdmin {
		t.Fatalf("identity not preserved: %+v", identity)
	}
}

func TestJWTStrategyRejectsTampering(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	token, err := strategy.IssueToken(Identity{UserID: 1})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := strategy.ParseToken(token + "x"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}

	other := NewJWTStrategy("different-secret", Options{})
	if _, err := other.ParseToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	if _, err := strategy.ParseToken(""); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestJWTStrategyRejectsExpired(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})

	// IssueToken always stamps a future expiry, so sign a stale token with
	// the same secret directly.
	past := time.Now().Add(-2 * time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := strategy.ParseToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestNewBcryptHasherCostFallback(t *testing.T) {
	for _, cost := range []int{-1, 0, 99} {
		hasher := NewBcryptHasher(cost)
		if hasher.cost < bcrypt.MinCost || hasher.cost > bcrypt.MaxCost {
			t.Fatalf("cost %d not brought into range: %d", cost, hasher.cost)
		}
	}
}

func TestBcryptHasherRoundTrip(t *testing.T) {
	hasher := NewBcryptHasher(4)

	hash, err := hasher.Hash("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the password")
	}

	if err := hasher.Compare(hash, "s3cret"); err != nil {
		t.Fatalf("compare with correct password: %v", err)
	}
	if err := hasher.Compare(hash, "wrong"); err == nil {
		t.Fatal("compare with wrong password must fail")
	}
}

package test

import (
	"context"
	"sync"

	"github.com/ngmstore/storefront/internal/domain/model"
)

// SinkNotification is one recorded notification.
type SinkNotification struct {
	Kind    string
	Email   string
	OrderID int64
}

// SinkRecorder captures notifications for assertions. Safe for concurrent
// use.
type SinkRecorder struct {
	mu   sync.Mutex
	Sent []SinkNotification
	Err  error
}

// OrderConfirmed records a payment confirmation notification.
func (s *SinkRecorder) OrderConfirmed(ctx context.Context, email, name string, order *model.Order) error {
	return s.record("confirmed", email, order.ID)
}

// OrderDelivered records a delivery notification.
func (s *SinkRecorder) OrderDelivered(ctx context.Context, email, name string, order *model.Order) error {
	return s.record("delivered", email, order.ID)
}

func (s *SinkRecorder) record(kind, email string, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, SinkNotification{Kind: kind, Email: email, OrderID: orderID})
	return nil
}

// Count returns how many notifications of the kind were recorded.
func (s *SinkRecorder) Count(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sent := range s.Sent {
		if sent.Kind == kind {
			n++
		}
	}
	return n
}

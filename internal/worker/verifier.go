package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ngmstore/storefront/internal/adapter/paystack"
	"github.com/ngmstore/storefront/internal/domain/model"
)

// SettlementFacade exposes the subset of application functionality required
// by the verifier.
type SettlementFacade interface {
	UnsettledOrders(ctx context.Context, olderThan time.Duration, limit int) ([]model.Order, error)
	VerifyReference(ctx context.Context, reference string) error
}

// Verifier polls the gateway for stale unpaid orders whose webhook never
// arrived and settles them concurrently.
type Verifier struct {
	facade       SettlementFacade
	pollInterval time.Duration
	gracePeriod  time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewVerifier constructs the verification worker pool.
func NewVerifier(facade SettlementFacade, pollInterval, gracePeriod time.Duration, batchSize, workers int, logger *slog.Logger) *Verifier {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Verifier{
		facade:       facade,
		pollInterval: pollInterval,
		gracePeriod:  gracePeriod,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background verification.
func (v *Verifier) Start(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel

	for i := 0; i < v.workers; i++ {
		v.wg.Add(1)
		go v.worker(runCtx)
	}

	v.wg.Add(1)
	go v.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (v *Verifier) Stop() {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.mu.Unlock()

	v.wg.Wait()
}

func (v *Verifier) dispatch(ctx context.Context) {
	defer v.wg.Done()
	defer close(v.jobs)
	ticker := time.NewTicker(v.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.fetchAndDispatch(ctx)
		}
	}
}

func (v *Verifier) fetchAndDispatch(ctx context.Context) {
	orders, err := v.facade.UnsettledOrders(ctx, v.gracePeriod, v.batchSize)
	if err != nil {
		v.logger.Error("fetch unsettled orders failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case v.jobs <- order:
		}
	}
}

func (v *Verifier) worker(ctx context.Context) {
	defer v.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-v.jobs:
			if !ok {
				return
			}
			v.handleOrder(ctx, order)
		}
	}
}

func (v *Verifier) handleOrder(ctx context.Context, order model.Order) {
	if order.GatewayReference == "" {
		return
	}
	if err := v.facade.VerifyReference(ctx, order.GatewayReference); err != nil {
		var rateLimited paystack.TooManyRequestsError
		if errors.As(err, &rateLimited) {
			v.logger.Warn("gateway rate limited", slog.Duration("retry_after", rateLimited.RetryAfter))
			time.Sleep(rateLimited.RetryAfter)
			return
		}
		v.logger.Error("verify reference failed",
			slog.Int64("order", order.ID), slog.String("error", err.Error()))
	}
}

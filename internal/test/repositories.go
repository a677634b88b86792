package test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/ngmstore/storefront/internal/domain/errors"
	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.Users[email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Name: name, Email: email, PasswordHash: passwordHash}
	s.Next++
	s.Users[email] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[email]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ProductRepositoryStub stores catalog entries in-memory for tests.
type ProductRepositoryStub struct {
	Products map[int64]*model.Product
	Next     int64
	Err      error
}

// NewProductRepositoryStub constructs the stub with initialized storage.
func NewProductRepositoryStub() *ProductRepositoryStub {
	return &ProductRepositoryStub{Products: make(map[int64]*model.Product), Next: 1}
}

// Add seeds a product and returns its assigned identifier.
func (s *ProductRepositoryStub) Add(product model.Product) int64 {
	product.ID = s.Next
	s.Next++
	s.Products[product.ID] = &product
	return product.ID
}

func (s *ProductRepositoryStub) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	stored := *product
	stored.ID = s.Next
	stored.CreatedAt = time.Now()
	s.Next++
	s.Products[stored.ID] = &stored
	return &stored, nil
}

func (s *ProductRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if product, ok := s.Products[id]; ok {
		copied := *product
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *ProductRepositoryStub) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int, error) {
	if s.Err != nil {
		return nil, 0, s.Err
	}
	matched := make([]model.Product, 0, len(s.Products))
	for _, product := range s.Products {
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(filter.Keyword)) {
			continue
		}
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		matched = append(matched, *product)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, len(matched), nil
}

func (s *ProductRepositoryStub) Update(ctx context.Context, product *model.Product) error {
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.Products[product.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	copied := *product
	s.Products[product.ID] = &copied
	return nil
}

func (s *ProductRepositoryStub) Delete(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.Products[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.Products, id)
	return nil
}

// OrderRepositoryMem is a mutex-guarded in-memory order store whose
// conditional transitions behave like the SQL ones. Concurrency tests rely
// on it to exercise real races.
type OrderRepositoryMem struct {
	mu     sync.Mutex
	orders map[int64]*model.Order
	next   int64

	PaymentNotified  map[int64]bool
	DeliveryNotified map[int64]bool
}

// NewOrderRepositoryMem constructs the in-memory order store.
func NewOrderRepositoryMem() *OrderRepositoryMem {
	return &OrderRepositoryMem{
		orders:           make(map[int64]*model.Order),
		next:             1,
		PaymentNotified:  make(map[int64]bool),
		DeliveryNotified: make(map[int64]bool),
	}
}

func (s *OrderRepositoryMem) Create(ctx context.Context, userID int64, items []model.LineItem, shipping model.ShippingInfo, itemsSubtotal, shippingCost int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	order := &model.Order{
		ID:               s.next,
		UserID:           userID,
		Items:            append([]model.LineItem(nil), items...),
		Shipping:         shipping,
		ItemsSubtotal:    itemsSubtotal,
		ShippingCost:     shippingCost,
		GrandTotal:       itemsSubtotal + shippingCost,
		PaymentState:     model.PaymentStateUnpaid,
		FulfillmentState: model.FulfillmentStateProcessing,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.next++
	s.orders[order.ID] = order
	copied := *order
	return &copied, nil
}

func (s *OrderRepositoryMem) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *OrderRepositoryMem) GetByGatewayReference(ctx context.Context, reference string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order.GatewayReference == reference {
			copied := *order
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderRepositoryMem) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]model.Order, 0, len(s.orders))
	for _, order := range s.orders {
		if filter.UserID != nil && order.UserID != *filter.UserID {
			continue
		}
		if filter.PaymentState != nil && order.PaymentState != *filter.PaymentState {
			continue
		}
		matched = append(matched, *order)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return matched, nil
}

func (s *OrderRepositoryMem) SetGatewayReference(ctx context.Context, orderID int64, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	for id, other := range s.orders {
		if id != orderID && other.GatewayReference == reference {
			return domainErrors.ErrAlreadyExists
		}
	}
	if order.GatewayReference != "" && order.GatewayReference != reference {
		return domainErrors.ErrInvalidTransition
	}
	order.GatewayReference = reference
	order.UpdatedAt = time.Now()
	return nil
}

func (s *OrderRepositoryMem) MarkPaid(ctx context.Context, orderID int64, evidence model.PaymentEvidence) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	switch order.PaymentState {
	case model.PaymentStateUnpaid, model.PaymentStatePendingReview:
	case model.PaymentStatePaid:
		return false, nil
	default:
		return false, domainErrors.ErrInvalidTransition
	}

	paidAt := evidence.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	if evidence.FromGateway() {
		order.GatewayReference = evidence.GatewayReference
		order.GatewayChannel = evidence.GatewayChannel
	} else if evidence.ProofImage != "" {
		order.ProofImage = evidence.ProofImage
	}
	order.PaymentState = model.PaymentStatePaid
	order.PaidAt = &paidAt
	order.UpdatedAt = time.Now()
	return true, nil
}

func (s *OrderRepositoryMem) MarkPendingReview(ctx context.Context, orderID int64, proofImage string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	switch order.PaymentState {
	case model.PaymentStateUnpaid:
		if proofImage != "" {
			order.ProofImage = proofImage
		}
		order.PaymentState = model.PaymentStatePendingReview
		order.UpdatedAt = time.Now()
		return true, nil
	case model.PaymentStatePendingReview, model.PaymentStatePaid:
		return false, nil
	default:
		return false, domainErrors.ErrInvalidTransition
	}
}

func (s *OrderRepositoryMem) MarkFailed(ctx context.Context, orderID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	switch order.PaymentState {
	case model.PaymentStateUnpaid, model.PaymentStatePendingReview:
		order.PaymentState = model.PaymentStateFailed
		order.UpdatedAt = time.Now()
		return true, nil
	default:
		return false, nil
	}
}

func (s *OrderRepositoryMem) AdvanceFulfillment(ctx context.Context, orderID int64, target model.FulfillmentState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	if order.PaymentState != model.PaymentStatePaid {
		return false, domainErrors.ErrInvalidTransition
	}
	if order.FulfillmentState == target {
		return false, nil
	}
	if !order.FulfillmentState.CanTransitionTo(target) {
		return false, domainErrors.ErrInvalidTransition
	}
	order.FulfillmentState = target
	order.UpdatedAt = time.Now()
	return true, nil
}

func (s *OrderRepositoryMem) ClaimPaymentNotification(ctx context.Context, orderID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok || order.PaymentState != model.PaymentStatePaid || s.PaymentNotified[orderID] {
		return false, nil
	}
	s.PaymentNotified[orderID] = true
	return true, nil
}

func (s *OrderRepositoryMem) ClaimDeliveryNotification(ctx context.Context, orderID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok || order.FulfillmentState != model.FulfillmentStateDelivered || s.DeliveryNotified[orderID] {
		return false, nil
	}
	s.DeliveryNotified[orderID] = true
	return true, nil
}

func (s *OrderRepositoryMem) SelectUnsettledBatch(ctx context.Context, olderThan time.Duration, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	matched := make([]model.Order, 0, limit)
	for _, order := range s.orders {
		if len(matched) == limit {
			break
		}
		if order.PaymentState != model.PaymentStateUnpaid || order.GatewayReference == "" {
			continue
		}
		if order.UpdatedAt.After(cutoff) {
			continue
		}
		order.UpdatedAt = time.Now()
		matched = append(matched, *order)
	}
	return matched, nil
}

// ProofRepositoryMem is a mutex-guarded in-memory proof store with the same
// one-shot review semantics as the SQL one.
type ProofRepositoryMem struct {
	mu     sync.Mutex
	proofs map[int64]*model.PaymentProof
	next   int64
}

// NewProofRepositoryMem constructs the in-memory proof store.
func NewProofRepositoryMem() *ProofRepositoryMem {
	return &ProofRepositoryMem{proofs: make(map[int64]*model.PaymentProof), next: 1}
}

func (s *ProofRepositoryMem) Create(ctx context.Context, submission repository.ProofSubmission) (*model.PaymentProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proof := &model.PaymentProof{
		ID:            s.next,
		UserID:        submission.UserID,
		Name:          submission.Name,
		Email:         submission.Email,
		Message:       submission.Message,
		Image:         submission.Image,
		ProductID:     submission.ProductID,
		OrderID:       submission.OrderID,
		ReviewOutcome: model.ReviewOutcomePending,
		CreatedAt:     time.Now(),
	}
	s.next++
	s.proofs[proof.ID] = proof
	copied := *proof
	return &copied, nil
}

func (s *ProofRepositoryMem) GetByID(ctx context.Context, id int64) (*model.PaymentProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proof, ok := s.proofs[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *proof
	return &copied, nil
}

func (s *ProofRepositoryMem) List(ctx context.Context) ([]model.PaymentProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	listed := make([]model.PaymentProof, 0, len(s.proofs))
	for _, proof := range s.proofs {
		listed = append(listed, *proof)
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].ID > listed[j].ID })
	return listed, nil
}

func (s *ProofRepositoryMem) LinkOrder(ctx context.Context, proofID, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	proof, ok := s.proofs[proofID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	proof.OrderID = &orderID
	return nil
}

func (s *ProofRepositoryMem) MarkReviewed(ctx context.Context, proofID int64, outcome model.ReviewOutcome) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proof, ok := s.proofs[proofID]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	if proof.ReviewOutcome != model.ReviewOutcomePending {
		return false, nil
	}
	now := time.Now()
	proof.ReviewOutcome = outcome
	proof.ReviewedAt = &now
	return true, nil
}

func (s *ProofRepositoryMem) MarkReviewedForOrder(ctx context.Context, orderID int64, outcome model.ReviewOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, proof := range s.proofs {
		if proof.OrderID != nil && *proof.OrderID == orderID && proof.ReviewOutcome == model.ReviewOutcomePending {
			proof.ReviewOutcome = outcome
			proof.ReviewedAt = &now
		}
	}
	return nil
}

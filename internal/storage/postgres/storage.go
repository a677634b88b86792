package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/ngmstore/storefront/internal/domain/errors"
	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool the storage relies on; tests swap in
// a mock implementation.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type productRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type proofRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Proofs() repository.ProofRepository {
	return &proofRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            is_admin BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id BIGSERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            brand TEXT NOT NULL,
            category TEXT NOT NULL,
            description TEXT NOT NULL,
            price BIGINT NOT NULL CHECK (price >= 0),
            count_in_stock INT NOT NULL CHECK (count_in_stock >= 0),
            image TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id),
            ship_name TEXT NOT NULL,
            ship_phone TEXT NOT NULL,
            ship_address TEXT NOT NULL,
            ship_country TEXT NOT NULL,
            items_subtotal BIGINT NOT NULL CHECK (items_subtotal >= 0),
            shipping_cost BIGINT NOT NULL CHECK (shipping_cost >= 0),
            grand_total BIGINT NOT NULL CHECK (grand_total = items_subtotal + shipping_cost),
            payment_state TEXT NOT NULL DEFAULT 'UNPAID',
            fulfillment_state TEXT NOT NULL DEFAULT 'PROCESSING',
            gateway_reference TEXT,
            gateway_channel TEXT,
            proof_image TEXT,
            paid_at TIMESTAMPTZ,
            payment_notified_at TIMESTAMPTZ,
            delivery_notified_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            order_id BIGINT NOT NULL REFERENCES orders(id),
            position INT NOT NULL,
            product_id BIGINT NOT NULL,
            name TEXT NOT NULL,
            quantity INT NOT NULL CHECK (quantity >= 1),
            unit_price BIGINT NOT NULL CHECK (unit_price >= 0),
            PRIMARY KEY (order_id, position)
        )`,
		`CREATE TABLE IF NOT EXISTS payment_proofs (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT REFERENCES users(id),
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            message TEXT NOT NULL DEFAULT '',
            image TEXT NOT NULL,
            product_id BIGINT REFERENCES products(id),
            order_id BIGINT REFERENCES orders(id),
            review_outcome TEXT NOT NULL DEFAULT 'PENDING',
            reviewed_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_gateway_reference ON orders(gateway_reference) WHERE gateway_reference IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_proofs_created ON payment_proofs(created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	const query = `INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id, is_admin, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, name, email, passwordHash).Scan(&u.ID, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Name = name
	u.Email = email
	u.PasswordHash = passwordHash
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT id, name, email, password_hash, is_admin, created_at FROM users WHERE email=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, name, email, password_hash, is_admin, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- ProductRepository implementation ---

func (r *productRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	const query = `INSERT INTO products (name, brand, category, description, price, count_in_stock, image)
                   VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	created := *product
	err := r.storage.pool.QueryRow(ctx, query,
		product.Name, product.Brand, product.Category, product.Description,
		product.Price, product.CountInStock, product.Image,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	const query = `SELECT id, name, brand, category, description, price, count_in_stock, image, created_at
                   FROM products WHERE id=$1`
	var p model.Product
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Description, &p.Price, &p.CountInStock, &p.Image, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if filter.Keyword != "" {
		args = append(args, "%"+filter.Keyword+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category ILIKE $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM products WHERE " + cond
	if err := r.storage.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, pageSize, (page-1)*pageSize)
	listQuery := fmt.Sprintf(`SELECT id, name, brand, category, description, price, count_in_stock, image, created_at
                              FROM products WHERE %s ORDER BY id LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))

	rows, err := r.storage.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Description, &p.Price, &p.CountInStock, &p.Image, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	const query = `UPDATE products SET name=$2, brand=$3, category=$4, description=$5, price=$6, count_in_stock=$7, image=$8 WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query,
		product.ID, product.Name, product.Brand, product.Category, product.Description,
		product.Price, product.CountInStock, product.Image,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, user_id, ship_name, ship_phone, ship_address, ship_country,
       items_subtotal, shipping_cost, grand_total, payment_state, fulfillment_state,
       COALESCE(gateway_reference, ''), COALESCE(gateway_channel, ''), COALESCE(proof_image, ''),
       paid_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.Shipping.Name, &o.Shipping.Phone, &o.Shipping.Address, &o.Shipping.Country,
		&o.ItemsSubtotal, &o.ShippingCost, &o.GrandTotal, &o.PaymentState, &o.FulfillmentState,
		&o.GatewayReference, &o.GatewayChannel, &o.ProofImage,
		&o.PaidAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, userID int64, items []model.LineItem, shipping model.ShippingInfo, itemsSubtotal, shippingCost int64) (*model.Order, error) {
	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO orders (user_id, ship_name, ship_phone, ship_address, ship_country,
                                                 items_subtotal, shipping_cost, grand_total)
                             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                             RETURNING id, payment_state, fulfillment_state, created_at, updated_at`
		o := model.Order{
			UserID:        userID,
			Shipping:      shipping,
			ItemsSubtotal: itemsSubtotal,
			ShippingCost:  shippingCost,
			GrandTotal:    itemsSubtotal + shippingCost,
			Items:         items,
		}
		err := tx.QueryRow(ctx, insertOrder,
			userID, shipping.Name, shipping.Phone, shipping.Address, shipping.Country,
			itemsSubtotal, shippingCost, itemsSubtotal+shippingCost,
		).Scan(&o.ID, &o.PaymentState, &o.FulfillmentState, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return err
		}

		const insertItem = `INSERT INTO order_items (order_id, position, product_id, name, quantity, unit_price)
                            VALUES ($1, $2, $3, $4, $5, $6)`
		for i, item := range items {
			if _, err := tx.Exec(ctx, insertItem, o.ID, i, item.ProductID, item.Name, item.Quantity, item.UnitPrice); err != nil {
				return err
			}
		}

		order = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	if order.Items, err = r.loadItems(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByGatewayReference(ctx context.Context, reference string) (*model.Order, error) {
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE gateway_reference=$1`, reference))
	if err != nil {
		return nil, err
	}
	if order.Items, err = r.loadItems(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID int64) ([]model.LineItem, error) {
	const query = `SELECT product_id, name, quantity, unit_price FROM order_items WHERE order_id=$1 ORDER BY position`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.LineItem
	for rows.Next() {
		var item model.LineItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	where := []string{"TRUE"}
	args := []any{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where = append(where, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.PaymentState != nil {
		args = append(args, string(*filter.PaymentState))
		where = append(where, fmt.Sprintf("payment_state=$%d", len(args)))
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`

	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		if result[i].Items, err = r.loadItems(ctx, result[i].ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *orderRepository) SetGatewayReference(ctx context.Context, orderID int64, reference string) error {
	const query = `UPDATE orders SET gateway_reference=$2, updated_at=NOW()
                   WHERE id=$1 AND (gateway_reference IS NULL OR gateway_reference=$2)`
	tag, err := r.storage.pool.Exec(ctx, query, orderID, reference)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, orderID); err != nil {
			return err
		}
		return domainErrors.ErrInvalidTransition
	}
	return nil
}

// MarkPaid applies the terminal successful payment transition as one
// conditional update. The guard on payment_state makes concurrent confirmers
// race safely: exactly one caller observes applied=true, and evidence already
// stored by the winner is never overwritten by the loser.
func (r *orderRepository) MarkPaid(ctx context.Context, orderID int64, evidence model.PaymentEvidence) (bool, error) {
	paidAt := evidence.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	var tag pgconn.CommandTag
	var err error
	if evidence.FromGateway() {
		const query = `UPDATE orders SET payment_state='PAID', gateway_reference=$2, gateway_channel=$3, paid_at=$4, updated_at=NOW()
                       WHERE id=$1 AND payment_state IN ('UNPAID', 'PENDING_REVIEW')`
		tag, err = r.storage.pool.Exec(ctx, query, orderID, evidence.GatewayReference, evidence.GatewayChannel, paidAt)
	} else {
		const query = `UPDATE orders SET payment_state='PAID', proof_image=COALESCE(NULLIF($2, ''), proof_image), paid_at=$3, updated_at=NOW()
                       WHERE id=$1 AND payment_state IN ('UNPAID', 'PENDING_REVIEW')`
		tag, err = r.storage.pool.Exec(ctx, query, orderID, evidence.ProofImage, paidAt)
	}
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	return false, r.noopOrInvalid(ctx, orderID, model.PaymentStatePaid)
}

func (r *orderRepository) MarkPendingReview(ctx context.Context, orderID int64, proofImage string) (bool, error) {
	const query = `UPDATE orders SET payment_state='PENDING_REVIEW', proof_image=COALESCE(NULLIF($2, ''), proof_image), updated_at=NOW()
                   WHERE id=$1 AND payment_state='UNPAID'`
	tag, err := r.storage.pool.Exec(ctx, query, orderID, proofImage)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	return false, r.noopOrInvalid(ctx, orderID, model.PaymentStatePendingReview)
}

func (r *orderRepository) MarkFailed(ctx context.Context, orderID int64) (bool, error) {
	const query = `UPDATE orders SET payment_state='FAILED', updated_at=NOW()
                   WHERE id=$1 AND payment_state IN ('UNPAID', 'PENDING_REVIEW')`
	tag, err := r.storage.pool.Exec(ctx, query, orderID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// A failed-charge signal never demotes an order another path settled.
	var state string
	err = r.storage.pool.QueryRow(ctx, `SELECT payment_state FROM orders WHERE id=$1`, orderID).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domainErrors.ErrNotFound
		}
		return false, err
	}
	return false, nil
}

// noopOrInvalid classifies a zero-row conditional update: reaching the target
// (or a later state on the same path) is an idempotent no-op, anything else
// is a rejected transition.
func (r *orderRepository) noopOrInvalid(ctx context.Context, orderID int64, target model.PaymentState) error {
	var raw string
	err := r.storage.pool.QueryRow(ctx, `SELECT payment_state FROM orders WHERE id=$1`, orderID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	state := model.PaymentState(raw)
	if state == target {
		return nil
	}
	if target == model.PaymentStatePendingReview && state == model.PaymentStatePaid {
		return nil
	}
	return domainErrors.ErrInvalidTransition
}

func (r *orderRepository) AdvanceFulfillment(ctx context.Context, orderID int64, target model.FulfillmentState) (bool, error) {
	var sources []string
	switch target {
	case model.FulfillmentStateShipped:
		sources = []string{string(model.FulfillmentStateProcessing)}
	case model.FulfillmentStateDelivered:
		sources = []string{string(model.FulfillmentStateProcessing), string(model.FulfillmentStateShipped)}
	default:
		return false, domainErrors.ErrInvalidTransition
	}

	const query = `UPDATE orders SET fulfillment_state=$2, updated_at=NOW()
                   WHERE id=$1 AND payment_state='PAID' AND fulfillment_state = ANY($3)`
	tag, err := r.storage.pool.Exec(ctx, query, orderID, string(target), sources)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var payment, fulfillment string
	err = r.storage.pool.QueryRow(ctx, `SELECT payment_state, fulfillment_state FROM orders WHERE id=$1`, orderID).Scan(&payment, &fulfillment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domainErrors.ErrNotFound
		}
		return false, err
	}
	if model.PaymentState(payment) == model.PaymentStatePaid && model.FulfillmentState(fulfillment) == target {
		return false, nil
	}
	return false, domainErrors.ErrInvalidTransition
}

func (r *orderRepository) ClaimPaymentNotification(ctx context.Context, orderID int64) (bool, error) {
	const query = `UPDATE orders SET payment_notified_at=NOW()
                   WHERE id=$1 AND payment_state='PAID' AND payment_notified_at IS NULL`
	tag, err := r.storage.pool.Exec(ctx, query, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) ClaimDeliveryNotification(ctx context.Context, orderID int64) (bool, error) {
	const query = `UPDATE orders SET delivery_notified_at=NOW()
                   WHERE id=$1 AND fulfillment_state='DELIVERED' AND delivery_notified_at IS NULL`
	tag, err := r.storage.pool.Exec(ctx, query, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SelectUnsettledBatch claims unpaid orders that hold a gateway reference and
// have not been touched recently, for the verify sweeper. Claimed rows get
// their updated_at bumped inside the locking transaction so concurrent sweeps
// and quick successive polls skip them.
func (r *orderRepository) SelectUnsettledBatch(ctx context.Context, olderThan time.Duration, limit int) ([]model.Order, error) {
	cutoff := time.Now().Add(-olderThan)
	const selectQuery = `SELECT ` + orderColumns + `
                         FROM orders
                         WHERE payment_state='UNPAID' AND gateway_reference IS NOT NULL AND updated_at < $1
                         ORDER BY updated_at
                         LIMIT $2
                         FOR UPDATE SKIP LOCKED`

	var orders []model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, cutoff, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			order, err := scanOrder(rows)
			if err != nil {
				return err
			}
			orders = append(orders, *order)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, order := range orders {
			if _, err := tx.Exec(ctx, `UPDATE orders SET updated_at=NOW() WHERE id=$1`, order.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// --- ProofRepository implementation ---

const proofColumns = `id, user_id, name, email, message, image, product_id, order_id, review_outcome, reviewed_at, created_at`

func scanProof(row pgx.Row) (*model.PaymentProof, error) {
	var p model.PaymentProof
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Message, &p.Image, &p.ProductID, &p.OrderID, &p.ReviewOutcome, &p.ReviewedAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *proofRepository) Create(ctx context.Context, submission repository.ProofSubmission) (*model.PaymentProof, error) {
	const query = `INSERT INTO payment_proofs (user_id, name, email, message, image, product_id, order_id)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING id, review_outcome, created_at`
	p := model.PaymentProof{
		UserID:    submission.UserID,
		Name:      submission.Name,
		Email:     submission.Email,
		Message:   submission.Message,
		Image:     submission.Image,
		ProductID: submission.ProductID,
		OrderID:   submission.OrderID,
	}
	err := r.storage.pool.QueryRow(ctx, query,
		submission.UserID, submission.Name, submission.Email, submission.Message,
		submission.Image, submission.ProductID, submission.OrderID,
	).Scan(&p.ID, &p.ReviewOutcome, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proofRepository) GetByID(ctx context.Context, id int64) (*model.PaymentProof, error) {
	return scanProof(r.storage.pool.QueryRow(ctx, `SELECT `+proofColumns+` FROM payment_proofs WHERE id=$1`, id))
}

func (r *proofRepository) List(ctx context.Context) ([]model.PaymentProof, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+proofColumns+` FROM payment_proofs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PaymentProof
	for rows.Next() {
		proof, err := scanProof(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *proof)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *proofRepository) LinkOrder(ctx context.Context, proofID, orderID int64) error {
	const query = `UPDATE payment_proofs SET order_id=$2 WHERE id=$1 AND (order_id IS NULL OR order_id=$2)`
	tag, err := r.storage.pool.Exec(ctx, query, proofID, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, proofID); err != nil {
			return err
		}
		return domainErrors.ErrInvalidTransition
	}
	return nil
}

func (r *proofRepository) MarkReviewedForOrder(ctx context.Context, orderID int64, outcome model.ReviewOutcome) error {
	const query = `UPDATE payment_proofs SET review_outcome=$2, reviewed_at=NOW()
                   WHERE order_id=$1 AND review_outcome='PENDING'`
	_, err := r.storage.pool.Exec(ctx, query, orderID, string(outcome))
	return err
}

func (r *proofRepository) MarkReviewed(ctx context.Context, proofID int64, outcome model.ReviewOutcome) (bool, error) {
	if outcome != model.ReviewOutcomeApproved && outcome != model.ReviewOutcomeRejected {
		return false, domainErrors.ErrValidation
	}
	const query = `UPDATE payment_proofs SET review_outcome=$2, reviewed_at=NOW()
                   WHERE id=$1 AND review_outcome='PENDING'`
	tag, err := r.storage.pool.Exec(ctx, query, proofID, string(outcome))
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	if _, err := r.GetByID(ctx, proofID); err != nil {
		return false, err
	}
	return false, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

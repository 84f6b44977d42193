package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
	"github.com/shopspring/decimal"
)

// OrderRepository reads and updates orders outside the checkout
// transaction.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a Postgres order repository
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Verify interface compliance
var _ repositories.OrderRepository = (*OrderRepository)(nil)

const orderColumns = `
	id, user_id, total::text, payment_method, notes, status,
	paid_at, shipped_at, completed_at, cancelled_at, refunded_at,
	created_at, updated_at`

// Get resolves an order by id
func (r *OrderRepository) Get(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row, id)
}

// GetForUser resolves one of the user's orders
func (r *OrderRepository) GetForUser(ctx context.Context, userID string, id uuid.UUID) (*entities.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, id, userID)
	return scanOrder(row, id)
}

// ListForUser returns the user's orders, newest first
func (r *OrderRepository) ListForUser(ctx context.Context, userID string) ([]*entities.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*entities.Order
	for rows.Next() {
		order, err := scanOrder(rows, uuid.Nil)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// ListItems returns an order's lines
func (r *OrderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]*entities.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, category,
		       COALESCE(component_id, '00000000-0000-0000-0000-000000000000'),
		       COALESCE(build_id, '00000000-0000-0000-0000-000000000000'),
		       quantity, price_each::text, component_name, component_image,
		       component_category, created_at
		FROM order_items WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []*entities.OrderItem
	for rows.Next() {
		var item entities.OrderItem
		var priceEach string
		err := rows.Scan(&item.ID, &item.OrderID, &item.Category, &item.ComponentID,
			&item.BuildID, &item.Quantity, &priceEach, &item.ComponentName,
			&item.ComponentImage, &item.ComponentCategory, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if item.PriceEach, err = decimal.NewFromString(priceEach); err != nil {
			return nil, fmt.Errorf("invalid price %q: %w", priceEach, err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Update rewrites an order's status fields
func (r *OrderRepository) Update(ctx context.Context, order *entities.Order) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = $2, paid_at = $3, shipped_at = $4, completed_at = $5,
		    cancelled_at = $6, refunded_at = $7, updated_at = NOW()
		WHERE id = $1`,
		order.ID, string(order.Status), order.PaidAt, order.ShippedAt,
		order.CompletedAt, order.CancelledAt, order.RefundedAt)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", order.ID, entities.ErrNotFound)
	}
	return nil
}

func scanOrder(row pgx.Row, id uuid.UUID) (*entities.Order, error) {
	var order entities.Order
	var total string
	err := row.Scan(&order.ID, &order.UserID, &total, &order.PaymentMethod,
		&order.Notes, &order.Status, &order.PaidAt, &order.ShippedAt,
		&order.CompletedAt, &order.CancelledAt, &order.RefundedAt,
		&order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	if order.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("invalid total %q: %w", total, err)
	}
	return &order, nil
}

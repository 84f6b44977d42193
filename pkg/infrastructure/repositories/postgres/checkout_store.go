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
)

// CheckoutStore runs the checkout protocol inside one pgx transaction.
// Stock rows are locked with SELECT ... FOR UPDATE before any
// decrement, so concurrent checkouts of the same part serialize at the
// row level instead of losing updates.
type CheckoutStore struct {
	pool *pgxpool.Pool
}

// NewCheckoutStore creates a Postgres checkout store
func NewCheckoutStore(pool *pgxpool.Pool) *CheckoutStore {
	return &CheckoutStore{pool: pool}
}

// Verify interface compliance
var _ repositories.CheckoutStore = (*CheckoutStore)(nil)

// WithinTx begins a transaction, runs fn, and commits; any error rolls
// everything back. Context cancellation aborts the transaction.
func (s *CheckoutStore) WithinTx(ctx context.Context, fn func(tx repositories.CheckoutTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&checkoutTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit checkout: %w", err)
	}
	return nil
}

type checkoutTx struct {
	tx pgx.Tx
}

var _ repositories.CheckoutTx = (*checkoutTx)(nil)

func (t *checkoutTx) CartItems(ctx context.Context, userID string) ([]*entities.CartItem, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+cartColumns+` FROM cart_items WHERE user_id = $1 ORDER BY created_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var items []*entities.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (t *checkoutTx) SavedBuild(ctx context.Context, userID string, buildID uuid.UUID) (*entities.SavedBuild, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+buildColumns+` FROM user_builds WHERE id = $1 AND user_id = $2 AND is_saved`,
		buildID, userID)
	return scanBuild(row, buildID.String())
}

func (t *checkoutTx) ComponentsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Component, error) {
	return t.queryComponents(ctx, ids, false)
}

// LockComponents takes FOR UPDATE row locks on the components
func (t *checkoutTx) LockComponents(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Component, error) {
	return t.queryComponents(ctx, ids, true)
}

func (t *checkoutTx) queryComponents(ctx context.Context, ids []uuid.UUID, lock bool) (map[uuid.UUID]*entities.Component, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*entities.Component{}, nil
	}
	query := `
		SELECT ` + componentColumns + `
		FROM components c
		JOIN categories cat ON cat.id = c.category_id
		WHERE c.id = ANY($1)`
	if lock {
		// Lock only the components rows; the categories join must not
		// take share locks on the category table.
		query += ` FOR UPDATE OF c`
	}

	rows, err := t.tx.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load components: %w", err)
	}
	defer rows.Close()

	found := make(map[uuid.UUID]*entities.Component, len(ids))
	for rows.Next() {
		component, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		found[component.ID] = component
	}
	return found, rows.Err()
}

func (t *checkoutTx) InsertOrder(ctx context.Context, order *entities.Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, total, payment_method, notes, status,
		                    created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		order.ID, order.UserID, order.Total.String(), order.PaymentMethod,
		order.Notes, string(order.Status), order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (t *checkoutTx) InsertOrderItems(ctx context.Context, items []*entities.OrderItem) error {
	for _, item := range items {
		var componentID, buildID *uuid.UUID
		if item.ComponentID != uuid.Nil {
			componentID = &item.ComponentID
		}
		if item.BuildID != uuid.Nil {
			buildID = &item.BuildID
		}
		_, err := t.tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, category, component_id, build_id,
			                         quantity, price_each, component_name,
			                         component_image, component_category, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			item.ID, item.OrderID, string(item.Category), componentID, buildID,
			item.Quantity, item.PriceEach.String(), item.ComponentName,
			item.ComponentImage, string(item.ComponentCategory), item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

// DecrementStock relies on the stock >= quantity guard as a second line
// of defense; callers validate against the locked rows first.
func (t *checkoutTx) DecrementStock(ctx context.Context, componentID uuid.UUID, quantity int) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE components SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2`, componentID, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("component %s: %w", componentID, errInsufficientStock)
	}
	return nil
}

var errInsufficientStock = errors.New("insufficient stock")

func (t *checkoutTx) DeleteCartItems(ctx context.Context, userID string, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND id = ANY($2)`, userID, itemIDs)
	if err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	return nil
}

func (t *checkoutTx) SoftDeleteBuild(ctx context.Context, userID string, buildID uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE user_builds SET is_saved = FALSE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_saved`, buildID, userID)
	if err != nil {
		return fmt.Errorf("failed to archive build: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("build %s: %w", buildID, entities.ErrNotFound)
	}
	return nil
}

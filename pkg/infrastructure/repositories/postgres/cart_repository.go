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

// CartRepository stores cart lines in cart_items. A partial unique
// index on (user_id, component_id) enforces the one-line-per-component
// rule at the database level.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository creates a Postgres cart repository
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Verify interface compliance
var _ repositories.CartRepository = (*CartRepository)(nil)

const cartColumns = `
	id, user_id, category, COALESCE(component_id, '00000000-0000-0000-0000-000000000000'),
	price::text, quantity, COALESCE(build_id, '00000000-0000-0000-0000-000000000000'),
	build_name, build_total_price::text, bundle_item_count, created_at, updated_at`

// ListForUser returns the user's cart lines, oldest first
func (r *CartRepository) ListForUser(ctx context.Context, userID string) ([]*entities.CartItem, error) {
	rows, err := r.pool.Query(ctx,
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

// GetItem returns one of the user's cart lines
func (r *CartRepository) GetItem(ctx context.Context, userID string, itemID uuid.UUID) (*entities.CartItem, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM cart_items WHERE id = $1 AND user_id = $2`,
		itemID, userID)
	item, err := scanCartItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cart item %s: %w", itemID, entities.ErrNotFound)
	}
	return item, err
}

// FindComponentLine returns the user's line for a component
func (r *CartRepository) FindComponentLine(ctx context.Context, userID string, componentID uuid.UUID) (*entities.CartItem, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM cart_items WHERE user_id = $1 AND component_id = $2`,
		userID, componentID)
	item, err := scanCartItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cart line for component %s: %w", componentID, entities.ErrNotFound)
	}
	return item, err
}

// Create inserts a cart line
func (r *CartRepository) Create(ctx context.Context, item *entities.CartItem) error {
	var componentID, buildID *uuid.UUID
	if item.ComponentID != uuid.Nil {
		componentID = &item.ComponentID
	}
	if item.BuildID != uuid.Nil {
		buildID = &item.BuildID
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_items (id, user_id, category, component_id, price, quantity,
		                        build_id, build_name, build_total_price, bundle_item_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		item.ID, item.UserID, string(item.Category), componentID,
		item.Price.String(), item.Quantity, buildID, item.BuildName,
		item.BuildTotalPrice.String(), item.BundleItemCount)
	if err != nil {
		return fmt.Errorf("failed to insert cart item: %w", err)
	}
	return nil
}

// Update rewrites a cart line's mutable fields
func (r *CartRepository) Update(ctx context.Context, item *entities.CartItem) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cart_items SET quantity = $3, price = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`,
		item.ID, item.UserID, item.Quantity, item.Price.String())
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cart item %s: %w", item.ID, entities.ErrNotFound)
	}
	return nil
}

// Delete removes a cart line
func (r *CartRepository) Delete(ctx context.Context, userID string, itemID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cart item %s: %w", itemID, entities.ErrNotFound)
	}
	return nil
}

func scanCartItem(row pgx.Row) (*entities.CartItem, error) {
	var item entities.CartItem
	var price, buildTotal string
	err := row.Scan(&item.ID, &item.UserID, &item.Category, &item.ComponentID,
		&price, &item.Quantity, &item.BuildID, &item.BuildName, &buildTotal,
		&item.BundleItemCount, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if item.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", price, err)
	}
	if item.BuildTotalPrice, err = decimal.NewFromString(buildTotal); err != nil {
		return nil, fmt.Errorf("invalid bundle price %q: %w", buildTotal, err)
	}
	return &item, nil
}

// Package order implements checkout and order fulfillment: the
// transactional path that turns cart lines or a saved build into a
// durable order with stock-locked deduction and field snapshots.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service runs checkouts and admin status transitions
type Service struct {
	orders   repositories.OrderRepository
	checkout repositories.CheckoutStore
	logger   *zap.Logger
}

// NewService creates an order service
func NewService(orders repositories.OrderRepository, checkout repositories.CheckoutStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:   orders,
		checkout: checkout,
		logger:   logger,
	}
}

// CheckoutCart converts cart lines into an order inside one
// transaction. When itemIDs is non-empty only those lines are checked
// out; the rest of the cart is preserved. Stock is locked before any
// decrement; insufficiency aborts with *entities.StockError and
// nothing is written.
func (s *Service) CheckoutCart(ctx context.Context, userID string, itemIDs []uuid.UUID, paymentMethod, notes string) (*entities.Order, error) {
	var placed *entities.Order

	err := s.checkout.WithinTx(ctx, func(tx repositories.CheckoutTx) error {
		items, err := tx.CartItems(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: Cart is empty", entities.ErrValidation)
		}

		selected := items
		if len(itemIDs) > 0 {
			wanted := make(map[uuid.UUID]bool, len(itemIDs))
			for _, id := range itemIDs {
				wanted[id] = true
			}
			selected = selected[:0:0]
			for _, item := range items {
				if wanted[item.ID] {
					selected = append(selected, item)
				}
			}
		}
		if len(selected) == 0 {
			return fmt.Errorf("%w: No valid items selected", entities.ErrValidation)
		}

		lines, err := s.resolveLines(ctx, tx, userID, selected)
		if err != nil {
			return err
		}

		order, err := s.placeOrder(ctx, tx, userID, lines, paymentMethod, notes)
		if err != nil {
			return err
		}

		selectedIDs := make([]uuid.UUID, 0, len(selected))
		for _, item := range selected {
			selectedIDs = append(selectedIDs, item.ID)
		}
		if err := tx.DeleteCartItems(ctx, userID, selectedIDs); err != nil {
			return fmt.Errorf("failed to remove checked-out cart items: %w", err)
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cart checkout completed",
		zap.String("user_id", userID),
		zap.String("order_id", placed.ID.String()),
		zap.String("total", placed.Total.String()))
	return placed, nil
}

// CheckoutSavedBuild converts a saved build into an order as a single
// bundle. The build is soft-deleted on success so order items keep
// resolving against it.
func (s *Service) CheckoutSavedBuild(ctx context.Context, userID string, buildID uuid.UUID, paymentMethod, notes string) (*entities.Order, error) {
	var placed *entities.Order

	err := s.checkout.WithinTx(ctx, func(tx repositories.CheckoutTx) error {
		build, err := tx.SavedBuild(ctx, userID, buildID)
		if err != nil {
			return err
		}

		bundle, err := s.bundleLine(ctx, tx, build)
		if err != nil {
			return err
		}

		order, err := s.placeOrder(ctx, tx, userID, []*checkoutLine{bundle}, paymentMethod, notes)
		if err != nil {
			return err
		}

		if err := tx.SoftDeleteBuild(ctx, userID, buildID); err != nil {
			return fmt.Errorf("failed to archive build: %w", err)
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("build checkout completed",
		zap.String("user_id", userID),
		zap.String("build_id", buildID.String()),
		zap.String("order_id", placed.ID.String()))
	return placed, nil
}

// UpdateStatus moves an order to a new fulfillment status, stamping the
// matching transition timestamp. Transitions are free-form.
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*entities.Order, error) {
	parsed, err := entities.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.StampStatus(parsed, time.Now())
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return s.orders.Get(ctx, orderID)
}

// Get returns one of the user's orders
func (s *Service) Get(ctx context.Context, userID string, orderID uuid.UUID) (*entities.Order, error) {
	return s.orders.GetForUser(ctx, userID, orderID)
}

// List returns the user's orders
func (s *Service) List(ctx context.Context, userID string) ([]*entities.Order, error) {
	return s.orders.ListForUser(ctx, userID)
}

// ListItems returns an order's lines with their snapshot fields
func (s *Service) ListItems(ctx context.Context, userID string, orderID uuid.UUID) ([]*entities.OrderItem, error) {
	if _, err := s.orders.GetForUser(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.orders.ListItems(ctx, orderID)
}

// checkoutLine is one resolved unit of a checkout: either a component
// line or a bundle expanded to its internal components. total is the
// line's contribution to the order total and always equals the sum of
// priceEach × quantity over its parts.
type checkoutLine struct {
	item       *entities.CartItem
	components []*bundlePart // one entry for component lines, many for bundles
	total      decimal.Decimal
}

type bundlePart struct {
	component *entities.Component
	quantity  int
	priceEach decimal.Decimal
}

// resolveLines expands the selected cart items against the locked
// catalog rows. Bundle lines resolve through their saved build; internal
// components that no longer exist are dropped, mirroring strict build
// expansion.
func (s *Service) resolveLines(ctx context.Context, tx repositories.CheckoutTx, userID string, selected []*entities.CartItem) ([]*checkoutLine, error) {
	var ids []uuid.UUID
	bundleComponents := make(map[uuid.UUID][]uuid.UUID)

	for _, item := range selected {
		if !item.IsBundle() {
			ids = append(ids, item.ComponentID)
			continue
		}
		build, err := tx.SavedBuild(ctx, userID, item.BuildID)
		if err != nil {
			return nil, fmt.Errorf("bundle %s: %w", item.BuildID, err)
		}
		for _, componentID := range build.Components {
			bundleComponents[item.BuildID] = append(bundleComponents[item.BuildID], componentID)
			ids = append(ids, componentID)
		}
	}

	locked, err := tx.LockComponents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock components: %w", err)
	}

	lines := make([]*checkoutLine, 0, len(selected))
	for _, item := range selected {
		line := &checkoutLine{item: item, total: decimal.Zero}
		if item.IsBundle() {
			// Bundle totals are recomputed from the locked rows so the
			// order total always matches its expanded items.
			for _, componentID := range bundleComponents[item.BuildID] {
				component, present := locked[componentID]
				if !present {
					continue
				}
				line.components = append(line.components, &bundlePart{
					component: component,
					quantity:  1,
					priceEach: component.Price,
				})
				line.total = line.total.Add(component.Price)
			}
		} else {
			component, present := locked[item.ComponentID]
			if !present {
				return nil, fmt.Errorf("component %s: %w", item.ComponentID, entities.ErrNotFound)
			}
			// Component lines are charged at the price the cart captured.
			line.components = append(line.components, &bundlePart{
				component: component,
				quantity:  item.Quantity,
				priceEach: item.Price,
			})
			line.total = item.LineTotal()
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// bundleLine builds the synthetic single-quantity bundle line of a
// saved-build checkout: price is the sum of the live component prices.
func (s *Service) bundleLine(ctx context.Context, tx repositories.CheckoutTx, build *entities.SavedBuild) (*checkoutLine, error) {
	ids := make([]uuid.UUID, 0, len(build.Components))
	for _, componentID := range build.Components {
		ids = append(ids, componentID)
	}
	locked, err := tx.LockComponents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock components: %w", err)
	}

	line := &checkoutLine{total: decimal.Zero}
	for _, componentID := range ids {
		component, present := locked[componentID]
		if !present {
			continue
		}
		line.components = append(line.components, &bundlePart{
			component: component,
			quantity:  1,
			priceEach: component.Price,
		})
		line.total = line.total.Add(component.Price)
	}
	if len(line.components) == 0 {
		return nil, fmt.Errorf("%w: build %s has no resolvable components", entities.ErrValidation, build.ID)
	}

	item, err := entities.NewBundleCartItem(build.UserID, build, len(line.components))
	if err != nil {
		return nil, err
	}
	item.BuildTotalPrice = line.total
	line.item = item
	return line, nil
}

// placeOrder runs steps shared by both checkout paths: stock
// validation over the already-locked rows, order insert, item
// expansion with snapshots, and stock decrement.
func (s *Service) placeOrder(ctx context.Context, tx repositories.CheckoutTx, userID string, lines []*checkoutLine, paymentMethod, notes string) (*entities.Order, error) {
	// Validate stock against the aggregate demand per component: the
	// same part may appear in several lines.
	demand := make(map[uuid.UUID]int)
	byID := make(map[uuid.UUID]*entities.Component)
	for _, line := range lines {
		for _, part := range line.components {
			demand[part.component.ID] += part.quantity
			byID[part.component.ID] = part.component
		}
	}
	for componentID, needed := range demand {
		component := byID[componentID]
		if component.Stock < needed {
			return nil, &entities.StockError{
				ComponentName: component.Name,
				Remaining:     component.Stock,
			}
		}
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.total)
	}

	if paymentMethod == "" {
		paymentMethod = entities.DefaultPaymentMethod
	}
	now := time.Now()
	order := &entities.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Total:         total,
		PaymentMethod: paymentMethod,
		Notes:         notes,
		Status:        entities.OrderPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.InsertOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	var items []*entities.OrderItem
	for _, line := range lines {
		for _, part := range line.components {
			item := &entities.OrderItem{
				ID:                uuid.New(),
				OrderID:           order.ID,
				Category:          part.component.Category,
				ComponentID:       part.component.ID,
				Quantity:          part.quantity,
				PriceEach:         part.priceEach,
				ComponentName:     part.component.Name,
				ComponentImage:    part.component.ImagePath,
				ComponentCategory: part.component.Category,
				CreatedAt:         now,
			}
			if line.item.IsBundle() {
				item.BuildID = line.item.BuildID
			}
			items = append(items, item)
		}
	}
	if err := tx.InsertOrderItems(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to insert order items: %w", err)
	}

	for componentID, needed := range demand {
		if err := tx.DecrementStock(ctx, componentID, needed); err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
	}
	return order, nil
}

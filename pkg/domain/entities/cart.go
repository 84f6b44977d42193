package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line of a user's cart: either a single component
// (quantity may grow, unique per (user, component)) or a build bundle
// standing for a whole saved build.
type CartItem struct {
	ID       uuid.UUID
	UserID   string
	Category Slug

	// Component line fields
	ComponentID uuid.UUID // zero for bundle lines
	Price       decimal.Decimal
	Quantity    int

	// Build bundle fields
	BuildID         uuid.UUID // zero for component lines
	BuildName       string
	BuildTotalPrice decimal.Decimal
	BundleItemCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewComponentCartItem creates a validated component cart line
func NewComponentCartItem(userID string, component *Component, quantity int) (*CartItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id cannot be empty", ErrValidation)
	}
	if component == nil {
		return nil, fmt.Errorf("%w: component cannot be nil", ErrValidation)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1, got %d", ErrValidation, quantity)
	}

	return &CartItem{
		ID:          uuid.New(),
		UserID:      userID,
		Category:    component.Category,
		ComponentID: component.ID,
		Price:       component.Price,
		Quantity:    quantity,
	}, nil
}

// NewBundleCartItem creates a validated build-bundle cart line
func NewBundleCartItem(userID string, build *SavedBuild, itemCount int) (*CartItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id cannot be empty", ErrValidation)
	}
	if build == nil {
		return nil, fmt.Errorf("%w: build cannot be nil", ErrValidation)
	}

	return &CartItem{
		ID:              uuid.New(),
		UserID:          userID,
		Category:        SlugBuildBundle,
		BuildID:         build.ID,
		BuildName:       build.Name,
		BuildTotalPrice: build.TotalPrice,
		BundleItemCount: itemCount,
		Quantity:        1,
	}, nil
}

// IsBundle reports whether the line stands for a whole saved build
func (i *CartItem) IsBundle() bool {
	return i.Category == SlugBuildBundle
}

// LineTotal returns the price contribution of this line
func (i *CartItem) LineTotal() decimal.Decimal {
	if i.IsBundle() {
		return i.BuildTotalPrice
	}
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

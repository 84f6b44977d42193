package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the admin-driven fulfillment state of an order.
// Transitions are free-form; each state stamps its own timestamp when
// entered.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

// ParseOrderStatus normalizes and validates a status string
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case OrderPending, OrderPaid, OrderShipped, OrderCompleted, OrderCancelled, OrderRefunded:
		return status, nil
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
}

// DefaultPaymentMethod is recorded when the client names none
const DefaultPaymentMethod = "cod"

// Order is a durable record of a checkout
type Order struct {
	ID            uuid.UUID
	UserID        string
	Total         decimal.Decimal
	PaymentMethod string
	Notes         string
	Status        OrderStatus

	PaidAt      *time.Time
	ShippedAt   *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
	RefundedAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StampStatus sets the status and the matching transition timestamp
func (o *Order) StampStatus(status OrderStatus, now time.Time) {
	o.Status = status
	o.UpdatedAt = now
	switch status {
	case OrderPaid:
		o.PaidAt = &now
	case OrderShipped:
		o.ShippedAt = &now
	case OrderCompleted:
		o.CompletedAt = &now
	case OrderCancelled:
		o.CancelledAt = &now
	case OrderRefunded:
		o.RefundedAt = &now
	}
}

// OrderItem is one fulfilled line of an order. Component name, image and
// category are snapshotted at order time so past orders stay readable
// after catalog edits or deletions.
type OrderItem struct {
	ID       uuid.UUID
	OrderID  uuid.UUID
	Category Slug

	ComponentID uuid.UUID // zero when the line never referenced a live component
	BuildID     uuid.UUID // set for lines expanded from a build bundle

	Quantity  int
	PriceEach decimal.Decimal

	ComponentName     string
	ComponentImage    string
	ComponentCategory Slug

	CreatedAt time.Time
}

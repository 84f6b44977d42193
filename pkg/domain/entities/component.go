package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComponentStatus represents the listing status of a component
type ComponentStatus string

const (
	StatusActive   ComponentStatus = "active"
	StatusInactive ComponentStatus = "inactive"
)

// ParseComponentStatus validates a status string
func ParseComponentStatus(s string) (ComponentStatus, error) {
	switch ComponentStatus(s) {
	case StatusActive, StatusInactive:
		return ComponentStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown component status %q", ErrValidation, s)
}

// Component represents a single sellable part belonging to one category
type Component struct {
	ID                uuid.UUID
	CategoryID        uuid.UUID
	Category          Slug
	Name              string
	Brand             string
	Price             decimal.Decimal
	Stock             int
	Status            ComponentStatus
	LowStockThreshold int
	Vendor            string
	ImagePath         string // bucket path; empty when no image uploaded
	ImageURL          string // derived public URL, never persisted
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewComponent creates a validated Component
func NewComponent(category Slug, name, brand string, price decimal.Decimal, stock int) (*Component, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: component name cannot be empty", ErrValidation)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative, got %s", ErrValidation, price)
	}
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative, got %d", ErrValidation, stock)
	}
	if _, err := ParseSlug(string(category)); err != nil {
		return nil, err
	}

	return &Component{
		ID:       uuid.New(),
		Category: category,
		Name:     name,
		Brand:    brand,
		Price:    price.Round(2),
		Stock:    stock,
		Status:   StatusActive,
	}, nil
}

// Visible reports whether the component may appear in user-facing listings
func (c *Component) Visible() bool {
	return c.Status == StatusActive && c.Stock > 0
}

// ComponentDetail joins a component with its resolved specs.
// Specs is nil when no specs row exists for the component.
type ComponentDetail struct {
	Component
	Specs Specs
}

// TDP returns the component's thermal design power when its specs carry one
func (d *ComponentDetail) TDP() int {
	switch s := d.Specs.(type) {
	case *CPUSpecs:
		return s.TDP
	case *GPUSpecs:
		return s.TDP
	}
	return 0
}

package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across repositories and services. Handlers map
// these onto HTTP statuses; everything else is an internal error.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// CompatibilityError reports a rejected component with the rule's reason
type CompatibilityError struct {
	Reason string
}

func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("incompatible component: %s", e.Reason)
}

// StockError reports insufficient stock for a named component
type StockError struct {
	ComponentName string
	Remaining     int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Remaining: %d", e.ComponentName, e.Remaining)
}

// AsCompatibilityError unwraps a CompatibilityError if err carries one
func AsCompatibilityError(err error) (*CompatibilityError, bool) {
	var ce *CompatibilityError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// AsStockError unwraps a StockError if err carries one
func AsStockError(err error) (*StockError, bool) {
	var se *StockError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

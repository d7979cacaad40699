package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrPlacementFailed wraps any failure of the transactional phase other than
	// a stock shortage. Nothing of the order is visible when it is returned.
	ErrPlacementFailed = errors.New("order placement failed")

	ErrInvalidPayMethod = errors.New("invalid pay method")
	ErrEmptySelection   = errors.New("no selected items in cart")
	ErrOrderNotFound    = errors.New("order not found")
	ErrSKUNotFound      = errors.New("sku not found")
)

type InsufficientStockError struct {
	SKUID     int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for sku %d: requested %d, available %d", e.SKUID, e.Requested, e.Available)
}

// NotFoundError means a selected sku has no usable count in the cart hash.
type NotFoundError struct {
	SKUID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sku %d is selected but has no count in cart", e.SKUID)
}

func placementFailed(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPlacementFailed, step, err)
}

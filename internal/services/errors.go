package services

import "fmt"

// ValidationError signals missing or malformed checkout input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError signals an unknown product, variant, delivery method or order.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InsufficientStockError signals that a stock counter, aggregate or variant,
// cannot cover the requested quantity.
type InsufficientStockError struct {
	Product   string
	Size      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	if e.Size != "" {
		return fmt.Sprintf("insufficient stock for %s size %s (requested %d, available %d)",
			e.Product, e.Size, e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient stock for %s (requested %d, available %d)",
		e.Product, e.Requested, e.Available)
}

// InvalidTransitionError signals an unrecognized order status name.
type InvalidTransitionError struct {
	Status string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status: %s", e.Status)
}

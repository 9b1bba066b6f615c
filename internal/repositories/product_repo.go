package repositories

import (
	"kirim/internal/models"
)

// ProductRepository defines the interface for product and variant data access,
// including the atomic stock operations used during reservation and restock.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetVariant(productID, size string) (*models.ProductVariant, error)
	Create(product *models.Product) error
	CreateVariant(variant *models.ProductVariant) error

	// ReserveStock conditionally decrements the product's aggregate stock.
	// It returns ErrInsufficientStock when the counter cannot cover qty,
	// without mutating anything. The check and the decrement are a single
	// atomic operation so concurrent reservations cannot drive the counter
	// negative.
	ReserveStock(productID string, qty int) error

	// ReserveVariantStock is ReserveStock against the per-size variant
	// counter, which is independently authoritative.
	ReserveVariantStock(productID, size string, qty int) error

	// RestoreStock increments the product's aggregate stock, the mirror of
	// ReserveStock. Returns ErrNotFound if the product no longer exists.
	RestoreStock(productID string, qty int) error

	// RestoreVariantStock increments the variant counter.
	RestoreVariantStock(productID, size string, qty int) error
}

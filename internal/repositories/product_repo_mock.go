package repositories

import (
	"fmt"
	"sync"

	"kirim/internal/models"

	"github.com/google/uuid"
)

func variantKey(productID, size string) string {
	return productID + "/" + size
}

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	variants map[string]models.ProductVariant
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
		variants: make(map[string]models.ProductVariant),
	}
}

// GetAll returns all products.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// GetVariant returns the size variant of a product.
func (r *MockProductRepository) GetVariant(productID, size string) (*models.ProductVariant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	variant, ok := r.variants[variantKey(productID, size)]
	if !ok {
		return nil, fmt.Errorf("variant %s/%s: %w", productID, size, ErrNotFound)
	}
	return &variant, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// CreateVariant adds a new product variant.
func (r *MockProductRepository) CreateVariant(variant *models.ProductVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if variant.ID == "" {
		variant.ID = uuid.New().String()
	}
	r.variants[variantKey(variant.ProductID, variant.Size)] = *variant
	return nil
}

// ReserveStock checks and decrements the aggregate counter under the lock,
// mirroring the conditional UPDATE of the GORM implementation.
func (r *MockProductRepository) ReserveStock(productID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok || product.Stock < qty {
		return fmt.Errorf("product %s: %w", productID, ErrInsufficientStock)
	}
	product.Stock -= qty
	r.products[productID] = product
	return nil
}

// ReserveVariantStock checks and decrements the variant counter.
func (r *MockProductRepository) ReserveVariantStock(productID, size string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	variant, ok := r.variants[variantKey(productID, size)]
	if !ok || variant.Stock < qty {
		return fmt.Errorf("variant %s/%s: %w", productID, size, ErrInsufficientStock)
	}
	variant.Stock -= qty
	r.variants[variantKey(productID, size)] = variant
	return nil
}

// RestoreStock increments the aggregate counter.
func (r *MockProductRepository) RestoreStock(productID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	product.Stock += qty
	r.products[productID] = product
	return nil
}

// RestoreVariantStock increments the variant counter.
func (r *MockProductRepository) RestoreVariantStock(productID, size string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	variant, ok := r.variants[variantKey(productID, size)]
	if !ok {
		return fmt.Errorf("variant %s/%s: %w", productID, size, ErrNotFound)
	}
	variant.Stock += qty
	r.variants[variantKey(productID, size)] = variant
	return nil
}

// snapshot copies the current counters so MockTxRunner can roll them back.
func (r *MockProductRepository) snapshot() (map[string]models.Product, map[string]models.ProductVariant) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make(map[string]models.Product, len(r.products))
	for k, v := range r.products {
		products[k] = v
	}
	variants := make(map[string]models.ProductVariant, len(r.variants))
	for k, v := range r.variants {
		variants[k] = v
	}
	return products, variants
}

// restore replaces the state with a snapshot taken earlier.
func (r *MockProductRepository) restore(products map[string]models.Product, variants map[string]models.ProductVariant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = products
	r.variants = variants
}

package repositories

import (
	"fmt"
	"kirim/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetVariant retrieves the size variant of a product.
func (r *GORMProductRepository) GetVariant(productID, size string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.First(&variant, "product_id = ? AND size = ?", productID, size).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("variant %s/%s: %w", productID, size, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get variant %s/%s: %w", productID, size, err)
	}
	return &variant, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// CreateVariant creates a new product variant in the database.
func (r *GORMProductRepository) CreateVariant(variant *models.ProductVariant) error {
	if variant.ID == "" {
		variant.ID = uuid.New().String()
	}
	if err := r.db.Create(variant).Error; err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

// ReserveStock decrements the aggregate stock counter with a conditional
// UPDATE. Zero rows affected means the counter could not cover qty and the
// row is left untouched, so concurrent reservations can never drive the
// counter negative.
func (r *GORMProductRepository) ReserveStock(productID string, qty int) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to reserve stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", productID, ErrInsufficientStock)
	}
	return nil
}

// ReserveVariantStock is the conditional decrement against the per-size
// variant counter, which is authoritative independently of the aggregate.
func (r *GORMProductRepository) ReserveVariantStock(productID, size string, qty int) error {
	res := r.db.Model(&models.ProductVariant{}).
		Where("product_id = ? AND size = ? AND stock >= ?", productID, size, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to reserve variant stock %s/%s: %w", productID, size, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variant %s/%s: %w", productID, size, ErrInsufficientStock)
	}
	return nil
}

// RestoreStock increments the aggregate stock counter, the mirror of
// ReserveStock used when an order is cancelled.
func (r *GORMProductRepository) RestoreStock(productID string, qty int) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to restore stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	return nil
}

// RestoreVariantStock increments the variant stock counter.
func (r *GORMProductRepository) RestoreVariantStock(productID, size string, qty int) error {
	res := r.db.Model(&models.ProductVariant{}).
		Where("product_id = ? AND size = ?", productID, size).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to restore variant stock %s/%s: %w", productID, size, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variant %s/%s: %w", productID, size, ErrNotFound)
	}
	return nil
}

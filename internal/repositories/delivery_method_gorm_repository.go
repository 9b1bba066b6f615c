package repositories

import (
	"fmt"
	"kirim/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMDeliveryMethodRepository is a GORM implementation of DeliveryMethodRepository.
type GORMDeliveryMethodRepository struct {
	db *gorm.DB
}

// NewGORMDeliveryMethodRepository creates a new instance of GORMDeliveryMethodRepository.
func NewGORMDeliveryMethodRepository(db *gorm.DB) *GORMDeliveryMethodRepository {
	return &GORMDeliveryMethodRepository{
		db: db,
	}
}

// GetAll retrieves all delivery methods.
func (r *GORMDeliveryMethodRepository) GetAll() ([]models.DeliveryMethod, error) {
	var methods []models.DeliveryMethod
	if err := r.db.Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to get all delivery methods: %w", err)
	}
	return methods, nil
}

// GetByID retrieves a single delivery method by its ID.
func (r *GORMDeliveryMethodRepository) GetByID(id string) (*models.DeliveryMethod, error) {
	var method models.DeliveryMethod
	if err := r.db.First(&method, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("delivery method %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get delivery method by ID %s: %w", id, err)
	}
	return &method, nil
}

// Create creates a new delivery method.
func (r *GORMDeliveryMethodRepository) Create(method *models.DeliveryMethod) error {
	if method.ID == "" {
		method.ID = uuid.New().String()
	}
	if err := r.db.Create(method).Error; err != nil {
		return fmt.Errorf("failed to create delivery method: %w", err)
	}
	return nil
}

package repositories

import (
	"fmt"
	"kirim/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCustomerRepository is a GORM implementation of CustomerRepository.
type GORMCustomerRepository struct {
	db *gorm.DB
}

// NewGORMCustomerRepository creates a new instance of GORMCustomerRepository.
func NewGORMCustomerRepository(db *gorm.DB) *GORMCustomerRepository {
	return &GORMCustomerRepository{
		db: db,
	}
}

// GetByPhone retrieves a customer by their phone number.
func (r *GORMCustomerRepository) GetByPhone(phone string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "phone = ?", phone).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("customer with phone %s: %w", phone, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer by phone %s: %w", phone, err)
	}
	return &customer, nil
}

// UpsertByPhone creates the customer or overwrites the mutable fields of the
// existing record with the same phone number.
func (r *GORMCustomerRepository) UpsertByPhone(customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "address", "delivery_details", "updated_at",
		}),
	}).Create(customer).Error
	if err != nil {
		return fmt.Errorf("failed to upsert customer %s: %w", customer.Phone, err)
	}
	return nil
}

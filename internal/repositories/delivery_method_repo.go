package repositories

import (
	"kirim/internal/models"
)

// DeliveryMethodRepository defines read access to shipping options.
type DeliveryMethodRepository interface {
	GetAll() ([]models.DeliveryMethod, error)
	GetByID(id string) (*models.DeliveryMethod, error)
	Create(method *models.DeliveryMethod) error
}

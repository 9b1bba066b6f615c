package repositories

import (
	"kirim/internal/models"
)

// CustomerRepository defines the interface for customer data access.
type CustomerRepository interface {
	GetByPhone(phone string) (*models.Customer, error)

	// UpsertByPhone creates the customer if the phone number is unseen,
	// otherwise overwrites name, address and delivery details on the
	// existing record.
	UpsertByPhone(customer *models.Customer) error
}

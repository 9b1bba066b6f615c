package repositories

import (
	"fmt"
	"sync"

	"kirim/internal/models"

	"github.com/google/uuid"
)

// MockCustomerRepository is an in-memory implementation of CustomerRepository.
type MockCustomerRepository struct {
	customers map[string]models.Customer // keyed by phone
	mu        sync.RWMutex

	// UpsertErr, when set, is returned by UpsertByPhone to simulate failure.
	UpsertErr error
}

// NewMockCustomerRepository creates a new instance of MockCustomerRepository.
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[string]models.Customer),
	}
}

// GetByPhone returns a customer by phone number.
func (r *MockCustomerRepository) GetByPhone(phone string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.customers[phone]
	if !ok {
		return nil, fmt.Errorf("customer with phone %s: %w", phone, ErrNotFound)
	}
	return &customer, nil
}

// UpsertByPhone creates or overwrites the customer record for the phone.
func (r *MockCustomerRepository) UpsertByPhone(customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.UpsertErr != nil {
		return r.UpsertErr
	}
	if existing, ok := r.customers[customer.Phone]; ok {
		existing.Name = customer.Name
		existing.Address = customer.Address
		existing.DeliveryDetails = customer.DeliveryDetails
		r.customers[customer.Phone] = existing
		return nil
	}
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	r.customers[customer.Phone] = *customer
	return nil
}

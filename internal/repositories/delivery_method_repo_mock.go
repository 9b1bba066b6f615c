package repositories

import (
	"fmt"
	"sync"

	"kirim/internal/models"

	"github.com/google/uuid"
)

// MockDeliveryMethodRepository is an in-memory implementation of
// DeliveryMethodRepository.
type MockDeliveryMethodRepository struct {
	methods map[string]models.DeliveryMethod
	mu      sync.RWMutex
}

// NewMockDeliveryMethodRepository creates a new instance of MockDeliveryMethodRepository.
func NewMockDeliveryMethodRepository() *MockDeliveryMethodRepository {
	return &MockDeliveryMethodRepository{
		methods: make(map[string]models.DeliveryMethod),
	}
}

// GetAll returns all delivery methods.
func (r *MockDeliveryMethodRepository) GetAll() ([]models.DeliveryMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methodList := make([]models.DeliveryMethod, 0, len(r.methods))
	for _, m := range r.methods {
		methodList = append(methodList, m)
	}
	return methodList, nil
}

// GetByID returns a delivery method by its ID.
func (r *MockDeliveryMethodRepository) GetByID(id string) (*models.DeliveryMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	method, ok := r.methods[id]
	if !ok {
		return nil, fmt.Errorf("delivery method %s: %w", id, ErrNotFound)
	}
	return &method, nil
}

// Create adds a new delivery method.
func (r *MockDeliveryMethodRepository) Create(method *models.DeliveryMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if method.ID == "" {
		method.ID = uuid.New().String()
	}
	r.methods[method.ID] = *method
	return nil
}

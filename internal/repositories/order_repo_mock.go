package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"kirim/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex

	// SaveErr, when set, is returned by Save to simulate storage failures.
	SaveErr error
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Lines {
		if order.Lines[i].ID == "" {
			order.Lines[i].ID = uuid.New().String()
		}
		order.Lines[i].OrderID = order.ID
	}
	for _, existing := range r.orders {
		if existing.OrderNumber == order.OrderNumber {
			return fmt.Errorf("duplicate order number %s", order.OrderNumber)
		}
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// Save updates the status and courier fields of an existing order.
func (r *MockOrderRepository) Save(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.SaveErr != nil {
		return r.SaveErr
	}
	existing, ok := r.orders[order.ID]
	if !ok {
		return fmt.Errorf("order %s: %w", order.ID, ErrNotFound)
	}
	existing.Status = order.Status
	existing.ConsignmentID = order.ConsignmentID
	existing.TrackingCode = order.TrackingCode
	existing.CourierStatus = order.CourierStatus
	existing.UpdatedAt = time.Now()
	r.orders[order.ID] = existing
	return nil
}

// List filters and paginates the stored orders.
func (r *MockOrderRepository) List(filter OrderFilter) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Order
	from, to, bounded := rangeBounds(filter.DateRange, time.Now())
	for _, order := range r.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(order.OrderNumber), s) &&
				!strings.Contains(strings.ToLower(order.CustomerName), s) &&
				!strings.Contains(order.CustomerPhone, filter.Search) {
				continue
			}
		}
		if bounded && (order.CreatedAt.Before(from) || !order.CreatedAt.Before(to)) {
			continue
		}
		matched = append(matched, order)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Order{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// FindAwaitingDispatch returns Confirmed orders without a consignment ID.
func (r *MockOrderRepository) FindAwaitingDispatch() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []models.Order
	for _, order := range r.orders {
		if order.Status == models.StatusConfirmed && order.ConsignmentID == "" {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders, nil
}

// SaveCourierAssignments applies a batch of courier linkages.
func (r *MockOrderRepository) SaveCourierAssignments(assignments []CourierAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range assignments {
		order, ok := r.orders[a.OrderID]
		if !ok {
			continue
		}
		order.ConsignmentID = a.ConsignmentID
		order.TrackingCode = a.TrackingCode
		order.CourierStatus = a.CourierStatus
		order.UpdatedAt = time.Now()
		r.orders[a.OrderID] = order
	}
	return nil
}

// snapshot copies the current orders so MockTxRunner can roll them back.
func (r *MockOrderRepository) snapshot() map[string]models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make(map[string]models.Order, len(r.orders))
	for k, v := range r.orders {
		orders[k] = v
	}
	return orders
}

// restore replaces the state with a snapshot taken earlier.
func (r *MockOrderRepository) restore(orders map[string]models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders = orders
}

package repositories

import (
	"kirim/internal/models"
)

// Date-range buckets accepted by OrderFilter.
const (
	RangeToday      = "Today"
	RangeYesterday  = "Yesterday"
	RangeLast7Days  = "Last 7 Days"
	RangeLast30Days = "Last 30 Days"
	RangeAllTime    = "All Time"
)

// OrderFilter narrows an order listing. Zero values mean "no filter".
type OrderFilter struct {
	Search    string // matches order number, customer name or phone
	Status    string
	DateRange string // one of the Range* buckets; empty means All Time
	Page      int    // 1-based; defaults to 1
	Limit     int    // defaults to 20
}

// CourierAssignment carries the courier linkage produced by one successful
// dispatch, applied to the order as a batch at the end of a worker tick.
type CourierAssignment struct {
	OrderID       string
	ConsignmentID string
	TrackingCode  string
	CourierStatus string
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetByID(id string) (*models.Order, error) // loads lines
	Create(order *models.Order) error         // order and lines together
	Save(order *models.Order) error           // status + courier fields
	List(filter OrderFilter) ([]models.Order, int64, error)

	// FindAwaitingDispatch returns Confirmed orders that have no courier
	// consignment yet, the dispatch worker's work queue.
	FindAwaitingDispatch() ([]models.Order, error)

	// SaveCourierAssignments persists a batch of courier linkages. A
	// missing order is skipped, not an error.
	SaveCourierAssignments(assignments []CourierAssignment) error
}

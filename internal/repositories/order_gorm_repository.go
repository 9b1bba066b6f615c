package repositories

import (
	"fmt"
	"time"

	"kirim/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetByID retrieves a single order with its lines.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Lines").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create inserts the order together with its lines.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Lines {
		if order.Lines[i].ID == "" {
			order.Lines[i].ID = uuid.New().String()
		}
		order.Lines[i].OrderID = order.ID
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Save persists the mutable fulfillment fields of an existing order: status
// and the courier linkage. Lines are immutable after creation and are never
// written here.
func (r *GORMOrderRepository) Save(order *models.Order) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Select("status", "consignment_id", "tracking_code", "courier_status").
		Updates(map[string]interface{}{
			"status":         order.Status,
			"consignment_id": order.ConsignmentID,
			"tracking_code":  order.TrackingCode,
			"courier_status": order.CourierStatus,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save order %s: %w", order.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", order.ID, ErrNotFound)
	}
	return nil
}

// List returns a page of orders matching the filter plus the total match
// count before pagination.
func (r *GORMOrderRepository) List(filter OrderFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"order_number LIKE ? OR customer_name LIKE ? OR customer_phone LIKE ?",
			like, like, like,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if from, to, bounded := rangeBounds(filter.DateRange, time.Now()); bounded {
		query = query.Where("created_at >= ? AND created_at < ?", from, to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	var orders []models.Order
	err := query.Preload("Lines").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// rangeBounds translates a date-range bucket into a half-open [from, to)
// interval. The second return is false for All Time or unknown buckets.
func rangeBounds(bucket string, now time.Time) (time.Time, time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch bucket {
	case RangeToday:
		return today, today.AddDate(0, 0, 1), true
	case RangeYesterday:
		return today.AddDate(0, 0, -1), today, true
	case RangeLast7Days:
		return today.AddDate(0, 0, -7), today.AddDate(0, 0, 1), true
	case RangeLast30Days:
		return today.AddDate(0, 0, -30), today.AddDate(0, 0, 1), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// FindAwaitingDispatch returns Confirmed orders without a consignment ID.
func (r *GORMOrderRepository) FindAwaitingDispatch() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Lines").
		Where("status = ? AND (consignment_id = '' OR consignment_id IS NULL)", models.StatusConfirmed).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find orders awaiting dispatch: %w", err)
	}
	return orders, nil
}

// SaveCourierAssignments persists a batch of courier linkages in one
// transaction. Orders that vanished since the sweep are skipped.
func (r *GORMOrderRepository) SaveCourierAssignments(assignments []CourierAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, a := range assignments {
			res := tx.Model(&models.Order{}).
				Where("id = ?", a.OrderID).
				Updates(map[string]interface{}{
					"consignment_id": a.ConsignmentID,
					"tracking_code":  a.TrackingCode,
					"courier_status": a.CourierStatus,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to save courier assignment for order %s: %w", a.OrderID, res.Error)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save courier assignments: %w", err)
	}
	return nil
}

package models

import "gorm.io/gorm"

// Order statuses. Transitions normally move forward through this list;
// Cancelled is reachable from any non-terminal status.
const (
	StatusPending    = "Pending"
	StatusConfirmed  = "Confirmed"
	StatusProcessing = "Processing"
	StatusPacked     = "Packed"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

// OrderStatuses lists every recognized status name.
var OrderStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusPacked,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// IsValidStatus reports whether s is a recognized order status name.
func IsValidStatus(s string) bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// OrderLine is one product/variant/quantity entry on an order. Product name,
// price and image are captured as a snapshot at order time and never mutated
// afterward; restocking touches inventory counters, not the line.
type OrderLine struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string  `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID   string  `json:"product_id" gorm:"type:varchar(36)"`
	ProductName string  `json:"product_name"`
	Image       string  `json:"image"`
	Color       string  `json:"color,omitempty"`
	Size        string  `json:"size,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	gorm.Model
}

// LineTotal returns unit price times quantity.
func (l *OrderLine) LineTotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Order is a customer's purchase intent and its fulfillment record.
// Customer fields are a point-in-time snapshot caught by value; later edits
// to the customer record do not change historical orders. Total is always
// Subtotal + Tax + ShippingCost. ConsignmentID moves from empty to set by
// exactly one successful courier dispatch and never back.
type Order struct {
	ID               string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber      string      `json:"order_number" gorm:"uniqueIndex;type:varchar(32)"`
	CustomerName     string      `json:"customer_name"`
	CustomerPhone    string      `json:"customer_phone" gorm:"index"`
	ShippingAddress  string      `json:"shipping_address"`
	DeliveryDetails  string      `json:"delivery_details,omitempty"`
	DeliveryMethodID string      `json:"delivery_method_id,omitempty" gorm:"type:varchar(36)"`
	Subtotal         float64     `json:"subtotal"`
	Tax              float64     `json:"tax"`
	ShippingCost     float64     `json:"shipping_cost"`
	Total            float64     `json:"total"`
	Status           string      `json:"status" gorm:"index;type:varchar(20)"`
	ConsignmentID    string      `json:"consignment_id,omitempty" gorm:"type:varchar(64)"`
	TrackingCode     string      `json:"tracking_code,omitempty" gorm:"type:varchar(64)"`
	CourierStatus    string      `json:"courier_status,omitempty" gorm:"type:varchar(32)"`
	Lines            []OrderLine `json:"lines" gorm:"foreignKey:OrderID"`
	gorm.Model
}

// Dispatched reports whether the order already has a courier consignment.
func (o *Order) Dispatched() bool {
	return o.ConsignmentID != ""
}

package models

import "gorm.io/gorm"

// Customer is the record upserted as a side effect of order creation,
// keyed by phone number. Orders snapshot these fields by value rather
// than referencing the customer row.
type Customer struct {
	ID              string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name            string `json:"name" validate:"required,max=100"`
	Phone           string `json:"phone" gorm:"uniqueIndex;type:varchar(20)" validate:"required,max=20"`
	Address         string `json:"address" validate:"required,max=500"`
	DeliveryDetails string `json:"delivery_details,omitempty" validate:"omitempty,max=500"`
	gorm.Model
}

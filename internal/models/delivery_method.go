package models

import "gorm.io/gorm"

// DeliveryMethod is a named shipping option with a flat cost. The
// fulfillment engine only reads these; management lives elsewhere.
type DeliveryMethod struct {
	ID     string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name   string  `json:"name" validate:"required,max=100"`
	Cost   float64 `json:"cost" validate:"gte=0"`
	Active bool    `json:"active"`
	gorm.Model
}

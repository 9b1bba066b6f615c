package models

import "gorm.io/gorm"

// Product represents a sellable item with its aggregate stock counter.
type Product struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Image       string  `json:"image" validate:"omitempty,max=500"`
	Stock       int     `json:"stock" validate:"gte=0"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// ProductVariant is a size variant of a product with its own stock counter.
// The variant counter and the product's aggregate counter must each
// independently cover the same physical units.
type ProductVariant struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductID string `json:"product_id" gorm:"index;type:varchar(36)" validate:"required"`
	Size      string `json:"size" gorm:"type:varchar(20)" validate:"required,max=20"`
	Stock     int    `json:"stock" validate:"gte=0"`
	gorm.Model
}

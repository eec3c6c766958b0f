package model

import (
	"time"
)

// Product is a catalog entry imported from the source catalog file.
// The ID is the external product handle and is immutable.
type Product struct {
	ID           string    `gorm:"type:varchar(255);primaryKey" json:"product_id"`
	Name         string    `gorm:"type:varchar(500);not null" json:"product_name"`
	LastModified time.Time `json:"last_modified"`

	// CategoryCount is selected from the mapping table, never stored
	CategoryCount  int64 `gorm:"->;-:migration" json:"category_count"`
	HasAllocations bool  `gorm:"-" json:"has_allocations"`

	CreatedAt time.Time `json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

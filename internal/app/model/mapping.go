package model

import (
	"time"
)

// ProductCategory represents the many-to-many relationship between
// products and categories. The composite primary key makes duplicate
// assignments impossible at the storage layer.
type ProductCategory struct {
	ProductID  string    `gorm:"type:varchar(255);primaryKey" json:"product_id"`
	CategoryID uint      `gorm:"primaryKey" json:"category_id"`
	Product    Product   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Category   Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ProductCategory) TableName() string {
	return "product_category_mappings"
}

package model

import (
	"time"
)

const (
	// CategoryMinLevel and CategoryMaxLevel bound the three-tier hierarchy
	CategoryMinLevel = 1
	CategoryMaxLevel = 3

	// CategoryNameMaxLength is the maximum number of runes in a category name
	CategoryNameMaxLength = 100
)

// Category is a node in the three-level product category tree.
// Level 1 categories have no parent; level 2 and 3 categories reference
// a parent exactly one level above them.
type Category struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_name_level_parent" json:"name"`
	Level    int    `gorm:"not null;uniqueIndex:idx_categories_name_level_parent" json:"level"`
	ParentID *uint  `gorm:"index;uniqueIndex:idx_categories_name_level_parent" json:"parent_id,omitempty"`

	Parent *Category `gorm:"foreignKey:ParentID" json:"-"`

	// HasChildren is computed per query, never stored
	HasChildren bool `gorm:"-" json:"has_children"`
	// DisplayName carries the "Parent > Child" label used by pickers
	DisplayName string `gorm:"-" json:"display_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// CategoryInfo is the read-only dependency summary used to drive
// delete confirmation. The counts mirror exactly what DeleteCategory checks.
type CategoryInfo struct {
	Name         string   `json:"name"`
	Level        int      `json:"level"`
	ParentName   string   `json:"parent,omitempty"`
	ProductCount int64    `json:"product_count"`
	ChildCount   int64    `json:"child_count"`
	Children     []string `json:"child_categories"`
}

package repository

import (
	"github.com/ikkim/tagmanager-backend/internal/app/model"
	"github.com/ikkim/tagmanager-backend/pkg/logger"
	"gorm.io/gorm"
)

type MappingRepository interface {
	Create(mapping *model.ProductCategory) error
	Exists(productID string, categoryID uint) (bool, error)
	// Delete removes exactly one mapping and reports whether a row was
	// actually deleted, so "nothing to remove" stays distinguishable
	// from "removed".
	Delete(productID string, categoryID uint) (bool, error)
	CategoryIDs(productID string) ([]uint, error)
	CountByCategory(categoryID uint) (int64, error)
	CountsByProducts(productIDs []string) (map[string]int64, error)
	// CategoryNamesByProduct returns every product's assigned category
	// names in one query, for the export writers.
	CategoryNamesByProduct() (map[string][]string, error)
	ProductsByCategory(categoryID uint) ([]model.Product, error)
}

type mappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) MappingRepository {
	return &mappingRepository{db: db}
}

func (r *mappingRepository) Create(mapping *model.ProductCategory) error {
	logger.Debug("Creating product category mapping", map[string]interface{}{
		"product_id":  mapping.ProductID,
		"category_id": mapping.CategoryID,
	})

	if err := r.db.Create(mapping).Error; err != nil {
		logger.Error("Failed to create mapping in database", err, map[string]interface{}{
			"product_id":  mapping.ProductID,
			"category_id": mapping.CategoryID,
		})
		return err
	}
	return nil
}

func (r *mappingRepository) Exists(productID string, categoryID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.ProductCategory{}).
		Where("product_id = ? AND category_id = ?", productID, categoryID).
		Count(&count).Error
	return count > 0, err
}

func (r *mappingRepository) Delete(productID string, categoryID uint) (bool, error) {
	result := r.db.
		Where("product_id = ? AND category_id = ?", productID, categoryID).
		Delete(&model.ProductCategory{})
	if result.Error != nil {
		logger.Error("Failed to delete mapping from database", result.Error, map[string]interface{}{
			"product_id":  productID,
			"category_id": categoryID,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *mappingRepository) CategoryIDs(productID string) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.ProductCategory{}).
		Where("product_id = ?", productID).
		Order("category_id ASC").
		Pluck("category_id", &ids).Error
	return ids, err
}

func (r *mappingRepository) CountByCategory(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.ProductCategory{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func (r *mappingRepository) CountsByProducts(productIDs []string) (map[string]int64, error) {
	if len(productIDs) == 0 {
		return map[string]int64{}, nil
	}

	type productCount struct {
		ProductID string
		Count     int64
	}

	var rows []productCount
	if err := r.db.Model(&model.ProductCategory{}).
		Select("product_id, COUNT(category_id) AS count").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(productIDs))
	for _, id := range productIDs {
		counts[id] = 0
	}
	for _, row := range rows {
		counts[row.ProductID] = row.Count
	}
	return counts, nil
}

func (r *mappingRepository) CategoryNamesByProduct() (map[string][]string, error) {
	type mappingRow struct {
		ProductID    string
		CategoryName string
	}

	var rows []mappingRow
	if err := r.db.Model(&model.ProductCategory{}).
		Select("product_category_mappings.product_id, categories.name AS category_name").
		Joins("JOIN categories ON categories.id = product_category_mappings.category_id").
		Order("product_category_mappings.product_id ASC, LOWER(categories.name) ASC").
		Scan(&rows).Error; err != nil {
		logger.Error("Failed to fetch category names per product", err, nil)
		return nil, err
	}

	names := make(map[string][]string)
	for _, row := range rows {
		names[row.ProductID] = append(names[row.ProductID], row.CategoryName)
	}
	return names, nil
}

func (r *mappingRepository) ProductsByCategory(categoryID uint) ([]model.Product, error) {
	// The join makes gorm enumerate the model's fields, which would
	// include the query-only category_count column; select the stored
	// columns explicitly.
	var products []model.Product
	err := r.db.Model(&model.Product{}).
		Select("products.*").
		Joins("JOIN product_category_mappings ON product_category_mappings.product_id = products.id").
		Where("product_category_mappings.category_id = ?", categoryID).
		Order("LOWER(products.name) ASC").
		Find(&products).Error
	return products, err
}

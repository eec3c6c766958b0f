package repository

import (
	"time"

	"github.com/ikkim/tagmanager-backend/internal/app/model"
	"github.com/ikkim/tagmanager-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	HideAllocated bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	// UpsertIgnore inserts the product and silently skips existing ids.
	// Used by the catalog import so re-running it is harmless.
	UpsertIgnore(product *model.Product) error
	BulkUpsertIgnore(products []model.Product, batchSize int) error
	FindByID(id string) (*model.Product, error)
	// FindWithFilter returns one page of products annotated with their
	// mapping counts, plus the unpaginated total for pagination metadata.
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	CategorizationStatus() ([]model.Product, error)
	TouchLastModified(id string) error
	CountAll() (int64, error)
	CountCategorized() (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	if product.LastModified.IsZero() {
		product.LastModified = time.Now()
	}
	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) UpsertIgnore(product *model.Product) error {
	if product.LastModified.IsZero() {
		product.LastModified = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(product).Error
}

func (r *productRepository) BulkUpsertIgnore(products []model.Product, batchSize int) error {
	now := time.Now()
	for i := range products {
		if products[i].LastModified.IsZero() {
			products[i].LastModified = now
		}
	}

	logger.Info("Bulk importing products", map[string]interface{}{
		"count":      len(products),
		"batch_size": batchSize,
	})
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(products, batchSize).Error
}

func (r *productRepository) FindByID(id string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) countedQuery() *gorm.DB {
	mappingCounts := r.db.Table("product_category_mappings").
		Select("product_category_mappings.product_id, COUNT(*) AS count").
		Group("product_category_mappings.product_id")

	return r.db.Model(&model.Product{}).
		Joins("LEFT JOIN (?) AS mapping_counts ON mapping_counts.product_id = products.id", mappingCounts).
		Select("products.*, COALESCE(mapping_counts.count, 0) AS category_count")
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"hide_allocated": filter.HideAllocated,
		"limit":          filter.Limit,
		"offset":         filter.Offset,
	})

	query := r.countedQuery()
	if filter.HideAllocated {
		query = query.Where("COALESCE(mapping_counts.count, 0) = 0")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err, nil)
		return nil, 0, err
	}

	query = query.Order("LOWER(products.name) ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, nil)
		return nil, 0, err
	}

	for i := range products {
		products[i].HasAllocations = products[i].CategoryCount > 0
	}
	return products, total, nil
}

func (r *productRepository) CategorizationStatus() ([]model.Product, error) {
	var products []model.Product
	if err := r.countedQuery().
		Order("LOWER(products.name) ASC").
		Find(&products).Error; err != nil {
		logger.Error("Failed to fetch categorization status", err, nil)
		return nil, err
	}

	for i := range products {
		products[i].HasAllocations = products[i].CategoryCount > 0
	}
	return products, nil
}

func (r *productRepository) TouchLastModified(id string) error {
	return r.db.Model(&model.Product{}).
		Where("id = ?", id).
		Update("last_modified", time.Now()).Error
}

func (r *productRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Count(&count).Error
	return count, err
}

func (r *productRepository) CountCategorized() (int64, error) {
	var count int64
	err := r.db.Model(&model.ProductCategory{}).
		Distinct("product_id").
		Count(&count).Error
	return count, err
}

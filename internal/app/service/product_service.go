package service

import (
	"errors"
	"time"

	"github.com/ikkim/tagmanager-backend/internal/app/model"
	"github.com/ikkim/tagmanager-backend/internal/app/repository"
	apperrors "github.com/ikkim/tagmanager-backend/internal/errors"
	"github.com/ikkim/tagmanager-backend/pkg/logger"
	"gorm.io/gorm"
)

// ProductPage is one page of the product listing plus the metadata the
// client needs to paginate further.
type ProductPage struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}

// CatalogStatistics summarizes categorization progress across the
// whole catalog.
type CatalogStatistics struct {
	TotalProducts       int64   `json:"total_products"`
	CategorizedProducts int64   `json:"categorized_products"`
	UncategorizedCount  int64   `json:"uncategorized_count"`
	CategorizedPercent  float64 `json:"categorized_percent"`
	TotalCategories     int64   `json:"total_categories"`
}

type ProductService interface {
	CreateProduct(id, name string) (*model.Product, error)
	GetProduct(id string) (*model.Product, error)
	ListProducts(filter repository.ProductFilter) (*ProductPage, error)
	GetProductCategories(productID string) ([]model.Category, error)
	GetLastModified(productID string) (time.Time, error)
	CategorizationStatus() ([]model.Product, error)
	Statistics() (*CatalogStatistics, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	mappingRepo  repository.MappingRepository
}

func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, mappingRepo repository.MappingRepository) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		mappingRepo:  mappingRepo,
	}
}

func (s *productService) CreateProduct(id, name string) (*model.Product, error) {
	logger.Info("Creating product", map[string]interface{}{
		"product_id": id,
		"name":       name,
	})

	if id == "" {
		return nil, apperrors.NewValidation(apperrors.ValidationRequired, "id",
			"product id is required")
	}
	if name == "" {
		return nil, apperrors.NewValidation(apperrors.ValidationRequired, "name",
			"product name is required")
	}

	product := &model.Product{
		ID:           id,
		Name:         name,
		LastModified: time.Now(),
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, apperrors.ParseStoreError(err, "create product")
	}
	return product, nil
}

func (s *productService) GetProduct(id string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound(apperrors.ProductNotFound, "product",
				"product not found")
		}
		return nil, apperrors.ParseStoreError(err, "fetch product")
	}
	return product, nil
}

func (s *productService) ListProducts(filter repository.ProductFilter) (*ProductPage, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"hide_allocated": filter.HideAllocated,
		"limit":          filter.Limit,
		"offset":         filter.Offset,
	})

	products, total, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "list products")
	}

	return &ProductPage{
		Products: products,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}, nil
}

func (s *productService) GetProductCategories(productID string) ([]model.Category, error) {
	if _, err := s.GetProduct(productID); err != nil {
		return nil, err
	}

	categoryIDs, err := s.mappingRepo.CategoryIDs(productID)
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "fetch product category ids")
	}

	categories := make([]model.Category, 0, len(categoryIDs))
	for _, categoryID := range categoryIDs {
		category, err := s.categoryRepo.FindByID(categoryID)
		if err != nil {
			// A mapping pointing at a vanished category is a data bug;
			// skip it rather than failing the whole listing.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Mapping references missing category", map[string]interface{}{
					"product_id":  productID,
					"category_id": categoryID,
				})
				continue
			}
			return nil, apperrors.ParseStoreError(err, "fetch mapped category")
		}
		categories = append(categories, *category)
	}
	return categories, nil
}

func (s *productService) GetLastModified(productID string) (time.Time, error) {
	product, err := s.GetProduct(productID)
	if err != nil {
		return time.Time{}, err
	}
	return product.LastModified, nil
}

func (s *productService) CategorizationStatus() ([]model.Product, error) {
	products, err := s.productRepo.CategorizationStatus()
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "fetch categorization status")
	}
	return products, nil
}

func (s *productService) Statistics() (*CatalogStatistics, error) {
	totalProducts, err := s.productRepo.CountAll()
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "count products")
	}

	categorized, err := s.productRepo.CountCategorized()
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "count categorized products")
	}

	totalCategories, err := s.categoryRepo.CountAll()
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "count categories")
	}

	stats := &CatalogStatistics{
		TotalProducts:       totalProducts,
		CategorizedProducts: categorized,
		UncategorizedCount:  totalProducts - categorized,
		TotalCategories:     totalCategories,
	}
	if totalProducts > 0 {
		stats.CategorizedPercent = float64(categorized) / float64(totalProducts) * 100
	}

	logger.Info("Computed catalog statistics", map[string]interface{}{
		"total_products":       stats.TotalProducts,
		"categorized_products": stats.CategorizedProducts,
		"total_categories":     stats.TotalCategories,
	})
	return stats, nil
}

package service

import (
	"errors"

	"github.com/ikkim/tagmanager-backend/internal/app/model"
	"github.com/ikkim/tagmanager-backend/internal/app/repository"
	apperrors "github.com/ikkim/tagmanager-backend/internal/errors"
	"github.com/ikkim/tagmanager-backend/pkg/logger"
	"gorm.io/gorm"
)

// ItemError records a single (product, category) pair failure inside a
// batch without aborting the rest of the batch.
type ItemError struct {
	CategoryID uint   `json:"category_id"`
	Code       string `json:"code"`
	Reason     string `json:"reason"`
}

// AssignResult reports the per-category outcome of a single-product
// assignment. Already-assigned categories are skipped, not errors.
type AssignResult struct {
	Assigned []uint      `json:"assigned"`
	Skipped  []uint      `json:"skipped"`
	Errors   []ItemError `json:"errors"`
}

// BulkProductResult is one product's slice of a bulk operation report.
type BulkProductResult struct {
	ProductID string      `json:"product_id"`
	Applied   []uint      `json:"applied"`
	Skipped   []uint      `json:"skipped"`
	Errors    []ItemError `json:"errors"`
}

type BulkSummary struct {
	ProductsProcessed int `json:"products_processed"`
	TotalApplied      int `json:"total_applied"`
	TotalSkipped      int `json:"total_skipped"`
	TotalErrors       int `json:"total_errors"`
}

// BulkResult is the partial-success report of a bulk assign or remove.
// Products appear in request order; categories within a product appear
// in request order.
type BulkResult struct {
	Operation string              `json:"operation"`
	Products  []BulkProductResult `json:"products"`
	Summary   BulkSummary         `json:"summary"`
}

type AssignmentService interface {
	AssignCategories(productID string, categoryIDs []uint, includeAncestors bool) (*AssignResult, error)
	RemoveCategory(productID string, categoryID uint) error
	BulkAssign(productIDs []string, categoryIDs []uint) (*BulkResult, error)
	BulkRemove(productIDs []string, categoryIDs []uint) (*BulkResult, error)
	CategoryCounts(productIDs []string) (map[string]int64, error)
	ProductsByCategory(categoryID uint) ([]model.Product, error)
}

type assignmentService struct {
	mappingRepo  repository.MappingRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewAssignmentService(mappingRepo repository.MappingRepository, categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) AssignmentService {
	return &assignmentService{
		mappingRepo:  mappingRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

func (s *assignmentService) AssignCategories(productID string, categoryIDs []uint, includeAncestors bool) (*AssignResult, error) {
	logger.Info("Assigning categories to product", map[string]interface{}{
		"product_id":        productID,
		"category_count":    len(categoryIDs),
		"include_ancestors": includeAncestors,
	})

	if len(categoryIDs) == 0 {
		return nil, apperrors.NewValidation(apperrors.ValidationEmptyBatch, "category_ids",
			"at least one category id must be provided")
	}

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot assign: product not found", map[string]interface{}{
				"product_id": productID,
			})
			return nil, apperrors.NewNotFound(apperrors.ProductNotFound, "product",
				"product not found")
		}
		return nil, apperrors.ParseStoreError(err, "fetch product")
	}

	if includeAncestors {
		expanded, err := s.expandWithAncestors(categoryIDs)
		if err != nil {
			return nil, err
		}
		categoryIDs = expanded
	}

	result := &AssignResult{
		Assigned: []uint{},
		Skipped:  []uint{},
		Errors:   []ItemError{},
	}

	seen := make(map[uint]bool, len(categoryIDs))
	for _, categoryID := range categoryIDs {
		// A duplicate within the same call resolves to the same
		// idempotence rule as re-assigning: skipped, not an error.
		if seen[categoryID] {
			result.Skipped = append(result.Skipped, categoryID)
			continue
		}
		seen[categoryID] = true

		assigned, itemErr := s.assignOne(productID, categoryID)
		switch {
		case itemErr != nil:
			result.Errors = append(result.Errors, *itemErr)
		case assigned:
			result.Assigned = append(result.Assigned, categoryID)
		default:
			result.Skipped = append(result.Skipped, categoryID)
		}
	}

	if len(result.Assigned) > 0 {
		if err := s.productRepo.TouchLastModified(productID); err != nil {
			logger.Warn("Failed to bump product last_modified", map[string]interface{}{
				"product_id": productID,
				"error":      err.Error(),
			})
		}
	}

	logger.Info("Categories assigned", map[string]interface{}{
		"product_id": productID,
		"assigned":   len(result.Assigned),
		"skipped":    len(result.Skipped),
		"errors":     len(result.Errors),
	})
	return result, nil
}

// assignOne attempts a single (product, category) mapping. Returns
// (true, nil) when a new mapping was created, (false, nil) when it
// already existed, and (false, err) for a per-item failure.
func (s *assignmentService) assignOne(productID string, categoryID uint) (bool, *ItemError) {
	if _, err := s.categoryRepo.FindByID(categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, &ItemError{
				CategoryID: categoryID,
				Code:       apperrors.CategoryNotFound,
				Reason:     "category does not exist",
			}
		}
		return false, &ItemError{
			CategoryID: categoryID,
			Code:       apperrors.InternalDatabaseError,
			Reason:     "failed to look up category",
		}
	}

	exists, err := s.mappingRepo.Exists(productID, categoryID)
	if err != nil {
		return false, &ItemError{
			CategoryID: categoryID,
			Code:       apperrors.InternalDatabaseError,
			Reason:     "failed to check existing mapping",
		}
	}
	if exists {
		return false, nil
	}

	mapping := &model.ProductCategory{ProductID: productID, CategoryID: categoryID}
	if err := s.mappingRepo.Create(mapping); err != nil {
		// A concurrent writer may beat the pre-check; the composite
		// primary key rejects the duplicate and we treat it as skipped.
		var conflictErr *apperrors.ConflictError
		if errors.As(apperrors.ParseStoreError(err, "create mapping"), &conflictErr) {
			return false, nil
		}
		return false, &ItemError{
			CategoryID: categoryID,
			Code:       apperrors.InternalDatabaseError,
			Reason:     "failed to create mapping",
		}
	}
	return true, nil
}

// expandWithAncestors appends every missing ancestor of the requested
// categories, preserving request order and deduplicating.
func (s *assignmentService) expandWithAncestors(categoryIDs []uint) ([]uint, error) {
	expanded := make([]uint, 0, len(categoryIDs))
	present := make(map[uint]bool, len(categoryIDs))

	for _, categoryID := range categoryIDs {
		expanded = append(expanded, categoryID)
		present[categoryID] = true
	}

	for _, categoryID := range categoryIDs {
		current, err := s.categoryRepo.FindByID(categoryID)
		if err != nil {
			// Unknown ids stay in the list and surface as per-item errors
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, apperrors.ParseStoreError(err, "fetch category for ancestor expansion")
		}
		for current.ParentID != nil {
			parent, err := s.categoryRepo.FindByID(*current.ParentID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					break
				}
				return nil, apperrors.ParseStoreError(err, "fetch ancestor category")
			}
			if !present[parent.ID] {
				expanded = append(expanded, parent.ID)
				present[parent.ID] = true
			}
			current = parent
		}
	}
	return expanded, nil
}

func (s *assignmentService) RemoveCategory(productID string, categoryID uint) error {
	logger.Info("Removing category from product", map[string]interface{}{
		"product_id":  productID,
		"category_id": categoryID,
	})

	deleted, err := s.mappingRepo.Delete(productID, categoryID)
	if err != nil {
		return apperrors.ParseStoreError(err, "delete mapping")
	}
	if !deleted {
		logger.Warn("Cannot remove: mapping not found", map[string]interface{}{
			"product_id":  productID,
			"category_id": categoryID,
		})
		return apperrors.NewNotFound(apperrors.MappingNotFound, "mapping",
			"the category is not assigned to this product")
	}

	if err := s.productRepo.TouchLastModified(productID); err != nil {
		logger.Warn("Failed to bump product last_modified", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
	}
	return nil
}

func (s *assignmentService) BulkAssign(productIDs []string, categoryIDs []uint) (*BulkResult, error) {
	logger.Info("Bulk assigning categories", map[string]interface{}{
		"product_count":  len(productIDs),
		"category_count": len(categoryIDs),
	})

	if err := validateBulkInput(productIDs, categoryIDs); err != nil {
		return nil, err
	}

	result := &BulkResult{Operation: "assign", Products: []BulkProductResult{}}

	for _, productID := range productIDs {
		entry := BulkProductResult{
			ProductID: productID,
			Applied:   []uint{},
			Skipped:   []uint{},
			Errors:    []ItemError{},
		}

		if missing, err := s.productMissing(productID); err != nil {
			return nil, err
		} else if missing {
			for _, categoryID := range categoryIDs {
				entry.Errors = append(entry.Errors, ItemError{
					CategoryID: categoryID,
					Code:       apperrors.ProductNotFound,
					Reason:     "product does not exist",
				})
			}
			result.Products = append(result.Products, entry)
			continue
		}

		seen := make(map[uint]bool, len(categoryIDs))
		for _, categoryID := range categoryIDs {
			if seen[categoryID] {
				entry.Skipped = append(entry.Skipped, categoryID)
				continue
			}
			seen[categoryID] = true

			assigned, itemErr := s.assignOne(productID, categoryID)
			switch {
			case itemErr != nil:
				entry.Errors = append(entry.Errors, *itemErr)
			case assigned:
				entry.Applied = append(entry.Applied, categoryID)
			default:
				entry.Skipped = append(entry.Skipped, categoryID)
			}
		}

		if len(entry.Applied) > 0 {
			if err := s.productRepo.TouchLastModified(productID); err != nil {
				logger.Warn("Failed to bump product last_modified", map[string]interface{}{
					"product_id": productID,
					"error":      err.Error(),
				})
			}
		}
		result.Products = append(result.Products, entry)
	}

	result.Summary = summarize(result.Products)
	logger.Info("Bulk assign completed", map[string]interface{}{
		"products_processed": result.Summary.ProductsProcessed,
		"total_applied":      result.Summary.TotalApplied,
		"total_skipped":      result.Summary.TotalSkipped,
		"total_errors":       result.Summary.TotalErrors,
	})
	return result, nil
}

func (s *assignmentService) BulkRemove(productIDs []string, categoryIDs []uint) (*BulkResult, error) {
	logger.Info("Bulk removing categories", map[string]interface{}{
		"product_count":  len(productIDs),
		"category_count": len(categoryIDs),
	})

	if err := validateBulkInput(productIDs, categoryIDs); err != nil {
		return nil, err
	}

	result := &BulkResult{Operation: "remove", Products: []BulkProductResult{}}

	for _, productID := range productIDs {
		entry := BulkProductResult{
			ProductID: productID,
			Applied:   []uint{},
			Skipped:   []uint{},
			Errors:    []ItemError{},
		}

		if missing, err := s.productMissing(productID); err != nil {
			return nil, err
		} else if missing {
			for _, categoryID := range categoryIDs {
				entry.Errors = append(entry.Errors, ItemError{
					CategoryID: categoryID,
					Code:       apperrors.ProductNotFound,
					Reason:     "product does not exist",
				})
			}
			result.Products = append(result.Products, entry)
			continue
		}

		for _, categoryID := range categoryIDs {
			deleted, err := s.mappingRepo.Delete(productID, categoryID)
			if err != nil {
				entry.Errors = append(entry.Errors, ItemError{
					CategoryID: categoryID,
					Code:       apperrors.InternalDatabaseError,
					Reason:     "failed to delete mapping",
				})
				continue
			}
			if !deleted {
				// Removing an absent mapping is a meaningful signal,
				// not silently idempotent.
				entry.Errors = append(entry.Errors, ItemError{
					CategoryID: categoryID,
					Code:       apperrors.MappingNotFound,
					Reason:     "the category is not assigned to this product",
				})
				continue
			}
			entry.Applied = append(entry.Applied, categoryID)
		}

		if len(entry.Applied) > 0 {
			if err := s.productRepo.TouchLastModified(productID); err != nil {
				logger.Warn("Failed to bump product last_modified", map[string]interface{}{
					"product_id": productID,
					"error":      err.Error(),
				})
			}
		}
		result.Products = append(result.Products, entry)
	}

	result.Summary = summarize(result.Products)
	logger.Info("Bulk remove completed", map[string]interface{}{
		"products_processed": result.Summary.ProductsProcessed,
		"total_applied":      result.Summary.TotalApplied,
		"total_skipped":      result.Summary.TotalSkipped,
		"total_errors":       result.Summary.TotalErrors,
	})
	return result, nil
}

func (s *assignmentService) productMissing(productID string) (bool, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, apperrors.ParseStoreError(err, "fetch product")
	}
	return false, nil
}

func validateBulkInput(productIDs []string, categoryIDs []uint) error {
	if len(productIDs) == 0 {
		return apperrors.NewValidation(apperrors.ValidationEmptyBatch, "product_ids",
			"at least one product id must be provided")
	}
	if len(categoryIDs) == 0 {
		return apperrors.NewValidation(apperrors.ValidationEmptyBatch, "category_ids",
			"at least one category id must be provided")
	}
	return nil
}

func summarize(products []BulkProductResult) BulkSummary {
	summary := BulkSummary{ProductsProcessed: len(products)}
	for _, entry := range products {
		summary.TotalApplied += len(entry.Applied)
		summary.TotalSkipped += len(entry.Skipped)
		summary.TotalErrors += len(entry.Errors)
	}
	return summary
}

func (s *assignmentService) CategoryCounts(productIDs []string) (map[string]int64, error) {
	if len(productIDs) == 0 {
		return nil, apperrors.NewValidation(apperrors.ValidationEmptyBatch, "product_ids",
			"at least one product id must be provided")
	}

	counts, err := s.mappingRepo.CountsByProducts(productIDs)
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "count categories per product")
	}
	return counts, nil
}

func (s *assignmentService) ProductsByCategory(categoryID uint) ([]model.Product, error) {
	if _, err := s.categoryRepo.FindByID(categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound(apperrors.CategoryNotFound, "category",
				"category not found")
		}
		return nil, apperrors.ParseStoreError(err, "fetch category")
	}

	products, err := s.mappingRepo.ProductsByCategory(categoryID)
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "list products by category")
	}
	return products, nil
}

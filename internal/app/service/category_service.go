package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ikkim/tagmanager-backend/internal/app/cache"
	"github.com/ikkim/tagmanager-backend/internal/app/model"
	"github.com/ikkim/tagmanager-backend/internal/app/repository"
	apperrors "github.com/ikkim/tagmanager-backend/internal/errors"
	"github.com/ikkim/tagmanager-backend/pkg/logger"
	"gorm.io/gorm"
)

// categoryNamePattern allows letters, digits, spaces and the small
// punctuation set used by the catalog: - _ & ( ) . ,
var categoryNamePattern = regexp.MustCompile(`^[\p{L}\p{N} &().,_-]+$`)

// DeleteCategoryResult reports what a successful deletion removed
// besides the category itself.
type DeleteCategoryResult struct {
	RemovedMappings int64 `json:"removed_mappings"`
}

type CategoryService interface {
	CreateCategory(name string, level int, parentID *uint) (*model.Category, error)
	RenameCategory(id uint, newName string) (*model.Category, error)
	DeleteCategory(id uint) (*DeleteCategoryResult, error)
	GetCategoryInfo(id uint) (*model.CategoryInfo, error)
	ListChildren(parentID *uint, level int) ([]model.Category, error)
	ListAll() ([]model.Category, error)
	CountCategories() (int64, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	mappingRepo  repository.MappingRepository
	treeCache    *cache.CategoryCache
	db           *gorm.DB
}

// NewCategoryService wires the hierarchy engine. treeCache may be nil
// when caching is disabled.
func NewCategoryService(categoryRepo repository.CategoryRepository, mappingRepo repository.MappingRepository, treeCache *cache.CategoryCache, db *gorm.DB) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		mappingRepo:  mappingRepo,
		treeCache:    treeCache,
		db:           db,
	}
}

// validateCategoryName trims and checks the name rules shared by
// create and rename. Returns the normalized name.
func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.NewValidation(apperrors.ValidationRequired, "name",
			"category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > model.CategoryNameMaxLength {
		return "", apperrors.NewValidation(apperrors.ValidationTooLong, "name",
			fmt.Sprintf("category name cannot exceed %d characters", model.CategoryNameMaxLength))
	}
	if !categoryNamePattern.MatchString(name) {
		return "", apperrors.NewValidation(apperrors.ValidationInvalidFormat, "name",
			"category name contains invalid characters")
	}
	return name, nil
}

// checkSiblingUniqueness enforces the case-insensitive (name, level,
// parent) uniqueness invariant. The unique index on the categories
// table backs this check against racing writers.
func (s *categoryService) checkSiblingUniqueness(name string, level int, parentID *uint, excludeID uint) error {
	existing, err := s.categoryRepo.FindSibling(name, level, parentID, excludeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.ParseStoreError(err, "check category uniqueness")
	}

	return apperrors.NewConflict(apperrors.CategoryNameExists,
		"a category with this name already exists at this level under this parent",
		map[string]interface{}{
			"existing_category": map[string]interface{}{
				"id":        existing.ID,
				"name":      existing.Name,
				"level":     existing.Level,
				"parent_id": existing.ParentID,
			},
		})
}

func (s *categoryService) CreateCategory(name string, level int, parentID *uint) (*model.Category, error) {
	logger.Info("Creating new category", map[string]interface{}{
		"name":           name,
		"category_level": level,
		"parent_id":      parentID,
	})

	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}

	if level < model.CategoryMinLevel || level > model.CategoryMaxLevel {
		return nil, apperrors.NewValidation(apperrors.ValidationInvalidLevel, "level",
			"category level must be 1, 2, or 3")
	}

	if level == model.CategoryMinLevel {
		if parentID != nil {
			return nil, apperrors.NewValidation(apperrors.ValidationParentProvided, "parent",
				"level 1 categories cannot have a parent category")
		}
	} else {
		if parentID == nil {
			return nil, apperrors.NewValidation(apperrors.ValidationParentRequired, "parent",
				"parent category is required for level 2 and 3 categories")
		}
		parent, err := s.categoryRepo.FindByID(*parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Cannot create category: parent not found", map[string]interface{}{
					"parent_id": *parentID,
				})
				return nil, apperrors.NewNotFound(apperrors.CategoryNotFound, "parent",
					"parent category does not exist")
			}
			return nil, apperrors.ParseStoreError(err, "fetch parent category")
		}
		if parent.Level != level-1 {
			logger.Warn("Cannot create category: parent level mismatch", map[string]interface{}{
				"parent_id":      parent.ID,
				"parent_level":   parent.Level,
				"category_level": level,
			})
			return nil, apperrors.NewValidation(apperrors.ValidationParentLevel, "parent",
				fmt.Sprintf("parent of a level %d category must be a level %d category", level, level-1))
		}
	}

	if err := s.checkSiblingUniqueness(name, level, parentID, 0); err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:     name,
		Level:    level,
		ParentID: parentID,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, apperrors.ParseStoreError(err, "create category")
	}

	s.treeCache.Invalidate(context.Background())

	logger.Info("Category created successfully", map[string]interface{}{
		"category_id":    category.ID,
		"name":           category.Name,
		"category_level": category.Level,
	})
	return category, nil
}

func (s *categoryService) RenameCategory(id uint, newName string) (*model.Category, error) {
	logger.Info("Renaming category", map[string]interface{}{
		"category_id": id,
		"new_name":    newName,
	})

	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot rename: category not found", map[string]interface{}{
				"category_id": id,
			})
			return nil, apperrors.NewNotFound(apperrors.CategoryNotFound, "category",
				"category not found")
		}
		return nil, apperrors.ParseStoreError(err, "fetch category")
	}

	newName, err = validateCategoryName(newName)
	if err != nil {
		return nil, err
	}

	// Uniqueness is scoped to the category's existing level and parent
	if err := s.checkSiblingUniqueness(newName, category.Level, category.ParentID, category.ID); err != nil {
		return nil, err
	}

	category.Name = newName
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, apperrors.ParseStoreError(err, "rename category")
	}

	s.treeCache.Invalidate(context.Background())

	logger.Info("Category renamed successfully", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	})
	return category, nil
}

func (s *categoryService) DeleteCategory(id uint) (*DeleteCategoryResult, error) {
	logger.Info("Deleting category", map[string]interface{}{
		"category_id": id,
	})

	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot delete: category not found", map[string]interface{}{
				"category_id": id,
			})
			return nil, apperrors.NewNotFound(apperrors.CategoryNotFound, "category",
				"category not found")
		}
		return nil, apperrors.ParseStoreError(err, "fetch category")
	}

	// Deletion is blocked, not cascading, while children exist
	childCount, err := s.categoryRepo.CountChildren(id)
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "count child categories")
	}
	if childCount > 0 {
		childNames, err := s.categoryRepo.ChildNames(id)
		if err != nil {
			return nil, apperrors.ParseStoreError(err, "list child categories")
		}
		logger.Warn("Cannot delete category with child categories", map[string]interface{}{
			"category_id": id,
			"child_count": childCount,
		})
		return nil, apperrors.NewConflict(apperrors.CategoryHasChildren,
			"cannot delete a category that has child categories",
			map[string]interface{}{
				"category":         category.Name,
				"child_categories": childNames,
			})
	}

	// Mappings referencing the category are removed in the same
	// transaction; the count is surfaced so the caller can warn.
	var removedMappings int64

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during category deletion, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"category_id": id,
			})
		}
	}()

	if err := tx.Model(&model.Product{}).
		Where("id IN (?)", tx.Model(&model.ProductCategory{}).
			Select("product_id").
			Where("category_id = ?", id)).
		Update("last_modified", time.Now()).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.ParseStoreError(err, "touch affected products")
	}

	result := tx.Where("category_id = ?", id).Delete(&model.ProductCategory{})
	if result.Error != nil {
		tx.Rollback()
		return nil, apperrors.ParseStoreError(result.Error, "remove category mappings")
	}
	removedMappings = result.RowsAffected

	if err := tx.Delete(&model.Category{}, id).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.ParseStoreError(err, "delete category")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.ParseStoreError(err, "commit category deletion")
	}

	s.treeCache.Invalidate(context.Background())

	logger.Info("Category deleted successfully", map[string]interface{}{
		"category_id":      id,
		"name":             category.Name,
		"removed_mappings": removedMappings,
	})
	return &DeleteCategoryResult{RemovedMappings: removedMappings}, nil
}

func (s *categoryService) GetCategoryInfo(id uint) (*model.CategoryInfo, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound(apperrors.CategoryNotFound, "category",
				"category not found")
		}
		return nil, apperrors.ParseStoreError(err, "fetch category")
	}

	info := &model.CategoryInfo{
		Name:  category.Name,
		Level: category.Level,
	}

	if category.ParentID != nil {
		parent, err := s.categoryRepo.FindByID(*category.ParentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ParseStoreError(err, "fetch parent category")
		}
		if parent != nil {
			info.ParentName = parent.Name
		}
	}

	productCount, err := s.mappingRepo.CountByCategory(id)
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "count category mappings")
	}
	info.ProductCount = productCount

	childCount, err := s.categoryRepo.CountChildren(id)
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "count child categories")
	}
	info.ChildCount = childCount

	children, err := s.categoryRepo.ChildNames(id)
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "list child categories")
	}
	info.Children = children

	return info, nil
}

func (s *categoryService) ListChildren(parentID *uint, level int) ([]model.Category, error) {
	if level < model.CategoryMinLevel || level > model.CategoryMaxLevel {
		return nil, apperrors.NewValidation(apperrors.ValidationInvalidLevel, "level",
			"category level must be 1, 2, or 3")
	}

	if level == model.CategoryMinLevel {
		return s.listChildrenAt(nil, level)
	}

	if parentID == nil {
		return nil, apperrors.NewValidation(apperrors.ValidationParentRequired, "parent",
			"parent category is required when listing level 2 or 3 categories")
	}
	if _, err := s.categoryRepo.FindByID(*parentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound(apperrors.CategoryNotFound, "parent",
				"parent category does not exist")
		}
		return nil, apperrors.ParseStoreError(err, "fetch parent category")
	}
	return s.listChildrenAt(parentID, level)
}

func (s *categoryService) listChildrenAt(parentID *uint, level int) ([]model.Category, error) {
	categories, err := s.categoryRepo.FindChildren(parentID, level)
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "list child categories")
	}
	return categories, nil
}

// ListAll returns every category with a hierarchical display name
// ("Parent > Child") for levels 2 and 3, as used by pickers.
func (s *categoryService) ListAll() ([]model.Category, error) {
	if cached, ok := s.treeCache.GetTree(context.Background()); ok {
		return cached, nil
	}

	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "list categories")
	}

	namesByID := make(map[uint]string, len(categories))
	for _, category := range categories {
		namesByID[category.ID] = category.Name
	}
	for i := range categories {
		if categories[i].ParentID != nil {
			if parentName, ok := namesByID[*categories[i].ParentID]; ok {
				categories[i].DisplayName = parentName + " > " + categories[i].Name
				continue
			}
		}
		categories[i].DisplayName = categories[i].Name
	}

	s.treeCache.SetTree(context.Background(), categories)
	return categories, nil
}

func (s *categoryService) CountCategories() (int64, error) {
	count, err := s.categoryRepo.CountAll()
	if err != nil {
		return 0, apperrors.ParseStoreError(err, "count categories")
	}
	return count, nil
}

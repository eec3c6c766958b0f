package repository

import (
	"github.com/ikkim/tagmanager-backend/internal/app/model"
	"github.com/ikkim/tagmanager-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(category *model.Category) error
	FindByID(id uint) (*model.Category, error)
	// FindSibling looks up a category with the same (case-insensitive)
	// name at the same level under the same parent. excludeID skips the
	// category itself during renames; pass 0 to match any.
	FindSibling(name string, level int, parentID *uint, excludeID uint) (*model.Category, error)
	FindChildren(parentID *uint, level int) ([]model.Category, error)
	FindAll() ([]model.Category, error)
	CountChildren(id uint) (int64, error)
	ChildNames(id uint) ([]string, error)
	Update(category *model.Category) error
	CountAll() (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *model.Category) error {
	logger.Debug("Creating category in database", map[string]interface{}{
		"name":           category.Name,
		"category_level": category.Level,
		"parent_id":      category.ParentID,
	})

	if err := r.db.Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"name":           category.Name,
			"category_level": category.Level,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindSibling(name string, level int, parentID *uint, excludeID uint) (*model.Category, error) {
	query := r.db.Model(&model.Category{}).
		Where("LOWER(name) = LOWER(?)", name).
		Where("level = ?", level)

	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}

	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var category model.Category
	if err := query.First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindChildren(parentID *uint, level int) ([]model.Category, error) {
	query := r.db.Model(&model.Category{}).
		Where("level = ?", level).
		Order("LOWER(name) ASC")

	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}

	var categories []model.Category
	if err := query.Find(&categories).Error; err != nil {
		logger.Error("Failed to find child categories", err, map[string]interface{}{
			"parent_id":      parentID,
			"category_level": level,
		})
		return nil, err
	}

	if err := r.annotateHasChildren(categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindAll() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("level ASC, LOWER(name) ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to list categories", err, nil)
		return nil, err
	}

	if err := r.annotateHasChildren(categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// annotateHasChildren fills the derived HasChildren flag with a single
// grouped query instead of one EXISTS per row.
func (r *categoryRepository) annotateHasChildren(categories []model.Category) error {
	if len(categories) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(categories))
	for _, category := range categories {
		ids = append(ids, category.ID)
	}

	var parentIDs []uint
	if err := r.db.Model(&model.Category{}).
		Where("parent_id IN ?", ids).
		Distinct().
		Pluck("parent_id", &parentIDs).Error; err != nil {
		return err
	}

	withChildren := make(map[uint]bool, len(parentIDs))
	for _, id := range parentIDs {
		withChildren[id] = true
	}
	for i := range categories {
		categories[i].HasChildren = withChildren[categories[i].ID]
	}
	return nil
}

func (r *categoryRepository) CountChildren(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Category{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}

func (r *categoryRepository) ChildNames(id uint) ([]string, error) {
	var names []string
	err := r.db.Model(&model.Category{}).
		Where("parent_id = ?", id).
		Order("LOWER(name) ASC").
		Pluck("name", &names).Error
	return names, err
}

func (r *categoryRepository) Update(category *model.Category) error {
	logger.Debug("Updating category in database", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	})

	if err := r.db.Save(category).Error; err != nil {
		logger.Error("Failed to update category in database", err, map[string]interface{}{
			"category_id": category.ID,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.Category{}).Count(&count).Error
	return count, err
}

package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/tagmanager-backend/internal/app/service"
	apperrors "github.com/ikkim/tagmanager-backend/internal/errors"
	"github.com/ikkim/tagmanager-backend/internal/middleware"
)

type CategoryController struct {
	categoryService   service.CategoryService
	assignmentService service.AssignmentService
}

func NewCategoryController(categoryService service.CategoryService, assignmentService service.AssignmentService) *CategoryController {
	return &CategoryController{
		categoryService:   categoryService,
		assignmentService: assignmentService,
	}
}

type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	Level    int    `json:"level" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

type RenameCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// parseCategoryID parses the :id path segment. Writes the error
// response itself; callers just return on !ok.
func parseCategoryID(c *gin.Context, param string) (uint, bool) {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID,
			"Invalid category ID", map[string]interface{}{"value": idStr})
		return 0, false
	}
	return uint(id), true
}

// CreateCategory creates a category at a hierarchy level
// POST /api/v1/categories
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid category creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput,
			"Invalid request data", map[string]interface{}{"details": err.Error()})
		return
	}

	category, err := ctrl.categoryService.CreateCategory(req.Name, req.Level, req.ParentID)
	if err != nil {
		log.Warn("Category creation rejected", map[string]interface{}{
			"name":           req.Name,
			"category_level": req.Level,
			"error":          err.Error(),
		})
		apperrors.HandleServiceError(c, err)
		return
	}

	log.Info("Category created", map[string]interface{}{
		"category_id":    category.ID,
		"name":           category.Name,
		"category_level": category.Level,
	})

	c.JSON(http.StatusCreated, gin.H{
		"category": category,
	})
}

// RenameCategory renames a category in place
// PATCH /api/v1/categories/:id
func (ctrl *CategoryController) RenameCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseCategoryID(c, "id")
	if !ok {
		return
	}

	var req RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid category rename request", map[string]interface{}{
			"category_id": id,
			"error":       err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput,
			"Invalid request data", map[string]interface{}{"details": err.Error()})
		return
	}

	category, err := ctrl.categoryService.RenameCategory(id, req.Name)
	if err != nil {
		log.Warn("Category rename rejected", map[string]interface{}{
			"category_id": id,
			"new_name":    req.Name,
			"error":       err.Error(),
		})
		apperrors.HandleServiceError(c, err)
		return
	}

	log.Info("Category renamed", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	})

	c.JSON(http.StatusOK, gin.H{
		"category": category,
	})
}

// DeleteCategory removes a leaf category and its product mappings
// DELETE /api/v1/categories/:id
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseCategoryID(c, "id")
	if !ok {
		return
	}

	result, err := ctrl.categoryService.DeleteCategory(id)
	if err != nil {
		log.Warn("Category deletion rejected", map[string]interface{}{
			"category_id": id,
			"error":       err.Error(),
		})
		apperrors.HandleServiceError(c, err)
		return
	}

	log.Info("Category deleted", map[string]interface{}{
		"category_id":      id,
		"removed_mappings": result.RemovedMappings,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":          "Category deleted",
		"removed_mappings": result.RemovedMappings,
	})
}

// ListCategories returns every category with hierarchical display names
// GET /api/v1/categories
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.categoryService.ListAll()
	if err != nil {
		log.Error("Failed to list categories", err, nil)
		apperrors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// ListLevel1 returns the top-level categories
// GET /api/v1/categories/level1
func (ctrl *CategoryController) ListLevel1(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.categoryService.ListChildren(nil, 1)
	if err != nil {
		log.Error("Failed to list level 1 categories", err, nil)
		apperrors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// ListLevel2 returns the level 2 categories under a parent
// GET /api/v1/categories/level2/:parentID
func (ctrl *CategoryController) ListLevel2(c *gin.Context) {
	ctrl.listChildrenOf(c, 2)
}

// ListLevel3 returns the level 3 categories under a parent
// GET /api/v1/categories/level3/:parentID
func (ctrl *CategoryController) ListLevel3(c *gin.Context) {
	ctrl.listChildrenOf(c, 3)
}

func (ctrl *CategoryController) listChildrenOf(c *gin.Context, level int) {
	log := middleware.GetLoggerFromContext(c)

	parentID, ok := parseCategoryID(c, "parentID")
	if !ok {
		return
	}

	categories, err := ctrl.categoryService.ListChildren(&parentID, level)
	if err != nil {
		log.Warn("Failed to list child categories", map[string]interface{}{
			"parent_id":      parentID,
			"category_level": level,
			"error":          err.Error(),
		})
		apperrors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// GetCategoryInfo returns a category's context: parent, children and
// how many products it is assigned to
// GET /api/v1/categories/:id/info
func (ctrl *CategoryController) GetCategoryInfo(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseCategoryID(c, "id")
	if !ok {
		return
	}

	info, err := ctrl.categoryService.GetCategoryInfo(id)
	if err != nil {
		log.Warn("Failed to fetch category info", map[string]interface{}{
			"category_id": id,
			"error":       err.Error(),
		})
		apperrors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"info": info,
	})
}

// GetCategoryProducts returns the products assigned to a category
// GET /api/v1/categories/:id/products
func (ctrl *CategoryController) GetCategoryProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseCategoryID(c, "id")
	if !ok {
		return
	}

	products, err := ctrl.assignmentService.ProductsByCategory(id)
	if err != nil {
		log.Warn("Failed to list category products", map[string]interface{}{
			"category_id": id,
			"error":       err.Error(),
		})
		apperrors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/tagmanager-backend/internal/app/service"
	apperrors "github.com/ikkim/tagmanager-backend/internal/errors"
	"github.com/ikkim/tagmanager-backend/internal/middleware"
)

type AssignmentController struct {
	assignmentService service.AssignmentService
}

func NewAssignmentController(assignmentService service.AssignmentService) *AssignmentController {
	return &AssignmentController{
		assignmentService: assignmentService,
	}
}

type AssignCategoriesRequest struct {
	CategoryIDs      []uint `json:"category_ids" binding:"required"`
	IncludeAncestors bool   `json:"include_ancestors"`
}

type BulkRequest struct {
	ProductIDs  []string `json:"product_ids" binding:"required"`
	CategoryIDs []uint   `json:"category_ids" binding:"required"`
}

type CategoryCountsRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required"`
}

// AssignCategories assigns categories to one product
// POST /api/v1/products/:id/categories
func (ctrl *AssignmentController) AssignCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID := c.Param("id")

	var req AssignCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid assignment request", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput,
			"Invalid request data", map[string]interface{}{"details": err.Error()})
		return
	}

	result, err := ctrl.assignmentService.AssignCategories(productID, req.CategoryIDs, req.IncludeAncestors)
	if err != nil {
		log.Warn("Assignment rejected", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		apperrors.HandleServiceError(c, err)
		return
	}

	log.Info("Categories assigned", map[string]interface{}{
		"product_id": productID,
		"assigned":   len(result.Assigned),
		"skipped":    len(result.Skipped),
		"errors":     len(result.Errors),
	})

	c.JSON(http.StatusCreated, result)
}

// RemoveCategory removes one category from one product
// DELETE /api/v1/products/:id/category/:categoryID
func (ctrl *AssignmentController) RemoveCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID := c.Param("id")
	categoryIDStr := c.Param("categoryID")
	categoryID, err := strconv.ParseUint(categoryIDStr, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID,
			"Invalid category ID", map[string]interface{}{"value": categoryIDStr})
		return
	}

	if err := ctrl.assignmentService.RemoveCategory(productID, uint(categoryID)); err != nil {
		log.Warn("Category removal rejected", map[string]interface{}{
			"product_id":  productID,
			"category_id": categoryID,
			"error":       err.Error(),
		})
		apperrors.HandleServiceError(c, err)
		return
	}

	log.Info("Category removed from product", map[string]interface{}{
		"product_id":  productID,
		"category_id": categoryID,
	})

	c.Status(http.StatusNoContent)
}

// BulkAssign assigns categories to many products with per-pair results
// POST /api/v1/bulk/assign
func (ctrl *AssignmentController) BulkAssign(c *gin.Context) {
	ctrl.runBulk(c, ctrl.assignmentService.BulkAssign)
}

// BulkRemove removes categories from many products with per-pair results
// POST /api/v1/bulk/remove
func (ctrl *AssignmentController) BulkRemove(c *gin.Context) {
	ctrl.runBulk(c, ctrl.assignmentService.BulkRemove)
}

func (ctrl *AssignmentController) runBulk(c *gin.Context, op func([]string, []uint) (*service.BulkResult, error)) {
	log := middleware.GetLoggerFromContext(c)

	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid bulk request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput,
			"Invalid request data", map[string]interface{}{"details": err.Error()})
		return
	}

	result, err := op(req.ProductIDs, req.CategoryIDs)
	if err != nil {
		log.Warn("Bulk operation rejected", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.HandleServiceError(c, err)
		return
	}

	log.Info("Bulk operation completed", map[string]interface{}{
		"operation":          result.Operation,
		"products_processed": result.Summary.ProductsProcessed,
		"total_applied":      result.Summary.TotalApplied,
		"total_errors":       result.Summary.TotalErrors,
	})

	c.JSON(http.StatusOK, result)
}

// CategoryCounts returns per-product assigned category counts
// POST /api/v1/products/bulk-categories-summary
func (ctrl *AssignmentController) CategoryCounts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CategoryCountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid category counts request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput,
			"Invalid request data", map[string]interface{}{"details": err.Error()})
		return
	}

	counts, err := ctrl.assignmentService.CategoryCounts(req.ProductIDs)
	if err != nil {
		apperrors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"counts": counts,
	})
}

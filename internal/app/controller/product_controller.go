package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/tagmanager-backend/internal/app/repository"
	"github.com/ikkim/tagmanager-backend/internal/app/service"
	apperrors "github.com/ikkim/tagmanager-backend/internal/errors"
	"github.com/ikkim/tagmanager-backend/internal/middleware"
)

const defaultPageSize = 50

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type CreateProductRequest struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateProduct registers a product in the catalog
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput,
			"Invalid request data", map[string]interface{}{"details": err.Error()})
		return
	}

	product, err := ctrl.productService.CreateProduct(req.ID, req.Name)
	if err != nil {
		log.Warn("Product creation rejected", map[string]interface{}{
			"product_id": req.ID,
			"error":      err.Error(),
		})
		apperrors.HandleServiceError(c, err)
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"product": product,
	})
}

// ListProducts returns one page of products with mapping counts
// GET /api/v1/products
// Query params:
//   - hide_allocated: only products without any category (optional)
//   - limit, offset: pagination (optional)
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.ProductFilter{Limit: defaultPageSize}
	filter.HideAllocated = c.Query("hide_allocated") == "true"

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput,
				"Invalid limit parameter", map[string]interface{}{"value": limitStr})
			return
		}
		filter.Limit = limit
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput,
				"Invalid offset parameter", map[string]interface{}{"value": offsetStr})
			return
		}
		filter.Offset = offset
	}

	page, err := ctrl.productService.ListProducts(filter)
	if err != nil {
		log.Error("Failed to list products", err, nil)
		apperrors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetStatistics returns categorization progress across the catalog
// GET /api/v1/products/statistics
func (ctrl *ProductController) GetStatistics(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stats, err := ctrl.productService.Statistics()
	if err != nil {
		log.Error("Failed to compute statistics", err, nil)
		apperrors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"statistics": stats,
	})
}

// GetCategorizationStatus lists every product with its mapping count
// GET /api/v1/products/categorization-status
func (ctrl *ProductController) GetCategorizationStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.productService.CategorizationStatus()
	if err != nil {
		log.Error("Failed to fetch categorization status", err, nil)
		apperrors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProductCategories returns the categories assigned to a product
// GET /api/v1/products/:id/categories
func (ctrl *ProductController) GetProductCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID := c.Param("id")
	categories, err := ctrl.productService.GetProductCategories(productID)
	if err != nil {
		log.Warn("Failed to fetch product categories", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		apperrors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": productID,
		"categories": categories,
		"count":      len(categories),
	})
}

// GetLastModified returns a product's last modification timestamp
// GET /api/v1/products/:id/last-modified
func (ctrl *ProductController) GetLastModified(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID := c.Param("id")
	lastModified, err := ctrl.productService.GetLastModified(productID)
	if err != nil {
		log.Warn("Failed to fetch product last modified", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		apperrors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id":    productID,
		"last_modified": lastModified,
	})
}

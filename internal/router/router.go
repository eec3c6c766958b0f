package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/tagmanager-backend/config"
	"github.com/ikkim/tagmanager-backend/internal/app/controller"
	"github.com/ikkim/tagmanager-backend/internal/middleware"
)

type Router struct {
	categoryController   *controller.CategoryController
	productController    *controller.ProductController
	assignmentController *controller.AssignmentController
	exportController     *controller.ExportController
	config               *config.Config
}

func NewRouter(
	categoryController *controller.CategoryController,
	productController *controller.ProductController,
	assignmentController *controller.AssignmentController,
	exportController *controller.ExportController,
	cfg *config.Config,
) *Router {
	return &Router{
		categoryController:   categoryController,
		productController:    productController,
		assignmentController: assignmentController,
		exportController:     exportController,
		config:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Tag Manager API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		categories := v1.Group("/categories")
		{
			categories.POST("", r.categoryController.CreateCategory)
			categories.GET("", r.categoryController.ListCategories)
			categories.GET("/level1", r.categoryController.ListLevel1)
			categories.GET("/level2/:parentID", r.categoryController.ListLevel2)
			categories.GET("/level3/:parentID", r.categoryController.ListLevel3)
			categories.GET("/:id/info", r.categoryController.GetCategoryInfo)
			categories.GET("/:id/products", r.categoryController.GetCategoryProducts)
			categories.PATCH("/:id", r.categoryController.RenameCategory)
			categories.DELETE("/:id", r.categoryController.DeleteCategory)
		}

		products := v1.Group("/products")
		{
			products.POST("", r.productController.CreateProduct)
			products.GET("", r.productController.ListProducts)
			products.GET("/statistics", r.productController.GetStatistics)
			products.GET("/categorization-status", r.productController.GetCategorizationStatus)
			products.POST("/bulk-categories-summary", r.assignmentController.CategoryCounts)
			products.GET("/:id/categories", r.productController.GetProductCategories)
			products.GET("/:id/last-modified", r.productController.GetLastModified)
			products.POST("/:id/categories", r.assignmentController.AssignCategories)
			products.DELETE("/:id/category/:categoryID", r.assignmentController.RemoveCategory)
		}

		bulk := v1.Group("/bulk")
		{
			bulk.POST("/assign", r.assignmentController.BulkAssign)
			bulk.POST("/remove", r.assignmentController.BulkRemove)
		}

		export := v1.Group("/export")
		{
			export.GET("/csv", r.exportController.ExportCSV)
			export.GET("/xlsx", r.exportController.ExportXLSX)
			export.POST("/archive", r.exportController.ExportArchive)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

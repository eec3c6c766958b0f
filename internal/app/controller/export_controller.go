package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/tagmanager-backend/internal/app/service"
	apperrors "github.com/ikkim/tagmanager-backend/internal/errors"
	"github.com/ikkim/tagmanager-backend/internal/middleware"
)

type ExportController struct {
	exportService service.ExportService
}

func NewExportController(exportService service.ExportService) *ExportController {
	return &ExportController{
		exportService: exportService,
	}
}

func exportFilename(extension string) string {
	return fmt.Sprintf("catalog-%s.%s", time.Now().Format("20060102-150405"), extension)
}

// ExportCSV streams the catalog as a CSV download
// GET /api/v1/export/csv
// Query params:
//   - product_id: restrict to a single product (optional)
func (ctrl *ExportController) ExportCSV(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID := c.Query("product_id")

	// Render before setting headers so an error response is not served
	// with attachment headers already written.
	var buf bytes.Buffer
	if err := ctrl.exportService.ExportCSV(&buf, productID); err != nil {
		log.Error("CSV export failed", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", exportFilename("csv")))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ExportXLSX streams the catalog as a spreadsheet download
// GET /api/v1/export/xlsx
func (ctrl *ExportController) ExportXLSX(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var buf bytes.Buffer
	if err := ctrl.exportService.ExportXLSX(&buf); err != nil {
		log.Error("XLSX export failed", err, nil)
		apperrors.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", exportFilename("xlsx")))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// ExportArchive uploads a CSV snapshot to object storage and returns
// a time-limited download URL
// POST /api/v1/export/archive
func (ctrl *ExportController) ExportArchive(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	upload, err := ctrl.exportService.ExportArchive(c.Request.Context())
	if err != nil {
		log.Error("Archive export failed", err, nil)
		apperrors.HandleServiceError(c, err)
		return
	}

	log.Info("Export archive created", map[string]interface{}{
		"key": upload.Key,
	})

	c.JSON(http.StatusCreated, gin.H{
		"archive": upload,
	})
}

package controller

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/tagmanager-backend/internal/app/model"
	"github.com/ikkim/tagmanager-backend/internal/app/repository"
	"github.com/ikkim/tagmanager-backend/internal/app/service"
	"github.com/ikkim/tagmanager-backend/internal/db"
	apperrors "github.com/ikkim/tagmanager-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupExportControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	mappingRepo := repository.NewMappingRepository(testDB)

	exportService := service.NewExportService(productRepo, mappingRepo, nil)
	ctrl := NewExportController(exportService)

	router := gin.New()
	export := router.Group("/api/v1/export")
	{
		export.GET("/csv", ctrl.ExportCSV)
		export.GET("/xlsx", ctrl.ExportXLSX)
	}

	return router, testDB
}

func TestExportController_ExportCSV(t *testing.T) {
	router, testDB := setupExportControllerTest(t)

	require.NoError(t, testDB.Create(&model.Product{ID: "P1", Name: "ThinkPad X1"}).Error)

	w := performJSON(t, router, http.MethodGet, "/api/v1/export/csv", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "ThinkPad X1")
}

func TestExportController_ExportCSV_UnknownProduct(t *testing.T) {
	router, _ := setupExportControllerTest(t)

	w := performJSON(t, router, http.MethodGet, "/api/v1/export/csv?product_id=ghost", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// The error body must come back as plain JSON, not as a CSV
	// attachment with the download headers already set.
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/json"))
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.Equal(t, apperrors.ProductNotFound, decodeErrorBody(t, w).Error)
}

func TestExportController_ExportXLSX(t *testing.T) {
	router, testDB := setupExportControllerTest(t)

	require.NoError(t, testDB.Create(&model.Product{ID: "P1", Name: "ThinkPad X1"}).Error)

	w := performJSON(t, router, http.MethodGet, "/api/v1/export/xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}

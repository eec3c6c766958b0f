package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/ikkim/tagmanager-backend/internal/app/repository"
	"github.com/ikkim/tagmanager-backend/internal/db"
	apperrors "github.com/ikkim/tagmanager-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupExportServiceTest(t *testing.T) (ExportService, ProductService, AssignmentService, CategoryService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	categoryRepo := repository.NewCategoryRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	mappingRepo := repository.NewMappingRepository(testDB)

	exportService := NewExportService(productRepo, mappingRepo, nil)
	productService := NewProductService(productRepo, categoryRepo, mappingRepo)
	assignmentService := NewAssignmentService(mappingRepo, categoryRepo, productRepo)
	categoryService := NewCategoryService(categoryRepo, mappingRepo, nil, testDB)

	return exportService, productService, assignmentService, categoryService
}

func seedExportCatalog(t *testing.T, productSvc ProductService, assignSvc AssignmentService, categorySvc CategoryService) {
	electronics, err := categorySvc.CreateCategory("Electronics", 1, nil)
	require.NoError(t, err)
	furniture, err := categorySvc.CreateCategory("Furniture", 1, nil)
	require.NoError(t, err)

	_, err = productSvc.CreateProduct("P1", "ThinkPad X1")
	require.NoError(t, err)
	_, err = productSvc.CreateProduct("P2", "Desk Chair")
	require.NoError(t, err)

	_, err = assignSvc.AssignCategories("P1", []uint{electronics.ID, furniture.ID}, false)
	require.NoError(t, err)
}

func TestExportService_ExportCSV(t *testing.T) {
	exportSvc, productSvc, assignSvc, categorySvc := setupExportServiceTest(t)
	seedExportCatalog(t, productSvc, assignSvc, categorySvc)

	var buf strings.Builder
	require.NoError(t, exportSvc.ExportCSV(&buf, ""))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"product_id", "product_name", "categories"}, records[0])

	rows := make(map[string][]string, 2)
	for _, record := range records[1:] {
		rows[record[0]] = record
	}
	assert.Equal(t, "Electronics, Furniture", rows["P1"][2])
	assert.Equal(t, "No Categories", rows["P2"][2])
}

func TestExportService_ExportCSV_SingleProduct(t *testing.T) {
	exportSvc, productSvc, assignSvc, categorySvc := setupExportServiceTest(t)
	seedExportCatalog(t, productSvc, assignSvc, categorySvc)

	var buf strings.Builder
	require.NoError(t, exportSvc.ExportCSV(&buf, "P1"))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "P1", records[1][0])
	assert.Equal(t, "ThinkPad X1", records[1][1])
}

func TestExportService_ExportCSV_UnknownProduct(t *testing.T) {
	exportSvc, _, _, _ := setupExportServiceTest(t)

	var buf strings.Builder
	err := exportSvc.ExportCSV(&buf, "ghost")
	var notFoundErr *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, apperrors.ProductNotFound, notFoundErr.Code)
}

func TestExportService_ExportXLSX(t *testing.T) {
	exportSvc, productSvc, assignSvc, categorySvc := setupExportServiceTest(t)
	seedExportCatalog(t, productSvc, assignSvc, categorySvc)

	var buf bytes.Buffer
	require.NoError(t, exportSvc.ExportXLSX(&buf))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"product_id", "product_name", "categories"}, rows[0])
}

func TestExportService_ExportArchive_StorageNotConfigured(t *testing.T) {
	exportSvc, _, _, _ := setupExportServiceTest(t)

	_, err := exportSvc.ExportArchive(context.Background())
	var storageErr *apperrors.StorageError
	require.ErrorAs(t, err, &storageErr)
}

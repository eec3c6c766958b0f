package service

import (
	"testing"

	"github.com/ikkim/tagmanager-backend/internal/app/repository"
	"github.com/ikkim/tagmanager-backend/internal/db"
	apperrors "github.com/ikkim/tagmanager-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductServiceTest(t *testing.T) (ProductService, AssignmentService, CategoryService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	categoryRepo := repository.NewCategoryRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	mappingRepo := repository.NewMappingRepository(testDB)

	productService := NewProductService(productRepo, categoryRepo, mappingRepo)
	assignmentService := NewAssignmentService(mappingRepo, categoryRepo, productRepo)
	categoryService := NewCategoryService(categoryRepo, mappingRepo, nil, testDB)

	return productService, assignmentService, categoryService, testDB
}

func TestProductService_CreateProduct(t *testing.T) {
	svc, _, _, _ := setupProductServiceTest(t)

	product, err := svc.CreateProduct("P1", "ThinkPad X1")
	require.NoError(t, err)
	assert.Equal(t, "P1", product.ID)
	assert.Equal(t, "ThinkPad X1", product.Name)
	assert.False(t, product.LastModified.IsZero())
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	svc, _, _, _ := setupProductServiceTest(t)

	var validationErr *apperrors.ValidationError

	_, err := svc.CreateProduct("", "ThinkPad X1")
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "id", validationErr.Field)

	_, err = svc.CreateProduct("P1", "")
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Field)
}

func TestProductService_CreateProduct_DuplicateID(t *testing.T) {
	svc, _, _, _ := setupProductServiceTest(t)

	_, err := svc.CreateProduct("P1", "ThinkPad X1")
	require.NoError(t, err)

	_, err = svc.CreateProduct("P1", "Another Name")
	var conflictErr *apperrors.ConflictError
	require.ErrorAs(t, err, &conflictErr)
}

func TestProductService_GetProduct_NotFound(t *testing.T) {
	svc, _, _, _ := setupProductServiceTest(t)

	_, err := svc.GetProduct("ghost")
	var notFoundErr *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, apperrors.ProductNotFound, notFoundErr.Code)
}

func TestProductService_ListProducts_HideAllocated(t *testing.T) {
	svc, assignSvc, categorySvc, _ := setupProductServiceTest(t)

	electronics, err := categorySvc.CreateCategory("Electronics", 1, nil)
	require.NoError(t, err)

	_, err = svc.CreateProduct("P1", "ThinkPad X1")
	require.NoError(t, err)
	_, err = svc.CreateProduct("P2", "Desk Chair")
	require.NoError(t, err)

	_, err = assignSvc.AssignCategories("P1", []uint{electronics.ID}, false)
	require.NoError(t, err)

	all, err := svc.ListProducts(repository.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	require.Len(t, all.Products, 2)

	unallocated, err := svc.ListProducts(repository.ProductFilter{HideAllocated: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), unallocated.Total)
	require.Len(t, unallocated.Products, 1)
	assert.Equal(t, "P2", unallocated.Products[0].ID)
	assert.False(t, unallocated.Products[0].HasAllocations)
}

func TestProductService_ListProducts_Pagination(t *testing.T) {
	svc, _, _, _ := setupProductServiceTest(t)

	_, err := svc.CreateProduct("P1", "Alpha")
	require.NoError(t, err)
	_, err = svc.CreateProduct("P2", "Beta")
	require.NoError(t, err)
	_, err = svc.CreateProduct("P3", "Gamma")
	require.NoError(t, err)

	page, err := svc.ListProducts(repository.ProductFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Beta", page.Products[0].Name)
	assert.Equal(t, "Gamma", page.Products[1].Name)
}

func TestProductService_GetProductCategories(t *testing.T) {
	svc, assignSvc, categorySvc, _ := setupProductServiceTest(t)

	electronics, err := categorySvc.CreateCategory("Electronics", 1, nil)
	require.NoError(t, err)
	furniture, err := categorySvc.CreateCategory("Furniture", 1, nil)
	require.NoError(t, err)

	_, err = svc.CreateProduct("P1", "ThinkPad X1")
	require.NoError(t, err)
	_, err = assignSvc.AssignCategories("P1", []uint{electronics.ID, furniture.ID}, false)
	require.NoError(t, err)

	categories, err := svc.GetProductCategories("P1")
	require.NoError(t, err)
	require.Len(t, categories, 2)

	_, err = svc.GetProductCategories("ghost")
	var notFoundErr *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestProductService_Statistics(t *testing.T) {
	svc, assignSvc, categorySvc, _ := setupProductServiceTest(t)

	electronics, err := categorySvc.CreateCategory("Electronics", 1, nil)
	require.NoError(t, err)

	_, err = svc.CreateProduct("P1", "ThinkPad X1")
	require.NoError(t, err)
	_, err = svc.CreateProduct("P2", "Desk Chair")
	require.NoError(t, err)
	_, err = assignSvc.AssignCategories("P1", []uint{electronics.ID}, false)
	require.NoError(t, err)

	stats, err := svc.Statistics()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.CategorizedProducts)
	assert.Equal(t, int64(1), stats.UncategorizedCount)
	assert.Equal(t, int64(1), stats.TotalCategories)
	assert.InDelta(t, 50.0, stats.CategorizedPercent, 0.01)
}

func TestProductService_Statistics_EmptyCatalog(t *testing.T) {
	svc, _, _, _ := setupProductServiceTest(t)

	stats, err := svc.Statistics()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalProducts)
	assert.Equal(t, 0.0, stats.CategorizedPercent)
}

func TestProductService_CategorizationStatus(t *testing.T) {
	svc, assignSvc, categorySvc, _ := setupProductServiceTest(t)

	electronics, err := categorySvc.CreateCategory("Electronics", 1, nil)
	require.NoError(t, err)

	_, err = svc.CreateProduct("P1", "ThinkPad X1")
	require.NoError(t, err)
	_, err = svc.CreateProduct("P2", "Desk Chair")
	require.NoError(t, err)
	_, err = assignSvc.AssignCategories("P1", []uint{electronics.ID}, false)
	require.NoError(t, err)

	products, err := svc.CategorizationStatus()
	require.NoError(t, err)
	require.Len(t, products, 2)

	byID := make(map[string]int64, len(products))
	for _, product := range products {
		byID[product.ID] = product.CategoryCount
	}
	assert.Equal(t, int64(1), byID["P1"])
	assert.Equal(t, int64(0), byID["P2"])
}

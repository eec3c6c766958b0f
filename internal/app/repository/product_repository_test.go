package repository

import (
	"testing"
	"time"

	"github.com/ikkim/tagmanager-backend/internal/app/model"
	"github.com/ikkim/tagmanager-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductRepoTest(t *testing.T) (*gorm.DB, ProductRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return testDB, NewProductRepository(testDB)
}

func TestProductRepository_Create_SetsLastModified(t *testing.T) {
	_, repo := setupProductRepoTest(t)

	product := &model.Product{ID: "P1", Name: "ThinkPad X1"}
	require.NoError(t, repo.Create(product))
	assert.False(t, product.LastModified.IsZero())
}

func TestProductRepository_UpsertIgnore(t *testing.T) {
	_, repo := setupProductRepoTest(t)

	require.NoError(t, repo.UpsertIgnore(&model.Product{ID: "P1", Name: "ThinkPad X1"}))

	// Re-importing the same id is silently skipped
	require.NoError(t, repo.UpsertIgnore(&model.Product{ID: "P1", Name: "Renamed"}))

	found, err := repo.FindByID("P1")
	require.NoError(t, err)
	assert.Equal(t, "ThinkPad X1", found.Name)
}

func TestProductRepository_BulkUpsertIgnore(t *testing.T) {
	_, repo := setupProductRepoTest(t)

	products := []model.Product{
		{ID: "P1", Name: "ThinkPad X1"},
		{ID: "P2", Name: "Desk Chair"},
	}
	require.NoError(t, repo.BulkUpsertIgnore(products, 100))

	count, err := repo.CountAll()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestProductRepository_FindWithFilter_CountsAndHideAllocated(t *testing.T) {
	testDB, repo := setupProductRepoTest(t)

	require.NoError(t, repo.Create(&model.Product{ID: "P1", Name: "ThinkPad X1"}))
	require.NoError(t, repo.Create(&model.Product{ID: "P2", Name: "Desk Chair"}))

	category := &model.Category{Name: "Electronics", Level: 1}
	require.NoError(t, testDB.Create(category).Error)
	require.NoError(t, testDB.Create(&model.ProductCategory{ProductID: "P1", CategoryID: category.ID}).Error)

	all, total, err := repo.FindWithFilter(ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, all, 2)

	byID := make(map[string]model.Product, len(all))
	for _, product := range all {
		byID[product.ID] = product
	}
	assert.Equal(t, int64(1), byID["P1"].CategoryCount)
	assert.True(t, byID["P1"].HasAllocations)
	assert.Equal(t, int64(0), byID["P2"].CategoryCount)

	unallocated, total, err := repo.FindWithFilter(ProductFilter{HideAllocated: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, unallocated, 1)
	assert.Equal(t, "P2", unallocated[0].ID)
}

func TestProductRepository_TouchLastModified(t *testing.T) {
	_, repo := setupProductRepoTest(t)

	product := &model.Product{ID: "P1", Name: "ThinkPad X1", LastModified: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Create(product))

	require.NoError(t, repo.TouchLastModified("P1"))

	found, err := repo.FindByID("P1")
	require.NoError(t, err)
	assert.True(t, found.LastModified.After(product.LastModified))
}

func TestProductRepository_CountCategorized(t *testing.T) {
	testDB, repo := setupProductRepoTest(t)

	require.NoError(t, repo.Create(&model.Product{ID: "P1", Name: "ThinkPad X1"}))
	require.NoError(t, repo.Create(&model.Product{ID: "P2", Name: "Desk Chair"}))

	category := &model.Category{Name: "Electronics", Level: 1}
	second := &model.Category{Name: "Business", Level: 1}
	require.NoError(t, testDB.Create(category).Error)
	require.NoError(t, testDB.Create(second).Error)

	// Two mappings on the same product still count it once
	require.NoError(t, testDB.Create(&model.ProductCategory{ProductID: "P1", CategoryID: category.ID}).Error)
	require.NoError(t, testDB.Create(&model.ProductCategory{ProductID: "P1", CategoryID: second.ID}).Error)

	count, err := repo.CountCategorized()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

package repository

import (
	"testing"

	"github.com/ikkim/tagmanager-backend/internal/app/model"
	"github.com/ikkim/tagmanager-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMappingRepoTest(t *testing.T) (*gorm.DB, MappingRepository, *model.Category, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	repo := NewMappingRepository(testDB)

	category := &model.Category{Name: "Electronics", Level: 1}
	require.NoError(t, testDB.Create(category).Error)

	product := &model.Product{ID: "P1", Name: "ThinkPad X1"}
	require.NoError(t, testDB.Create(product).Error)

	return testDB, repo, category, product
}

func TestMappingRepository_CreateAndExists(t *testing.T) {
	_, repo, category, product := setupMappingRepoTest(t)

	exists, err := repo.Exists(product.ID, category.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	err = repo.Create(&model.ProductCategory{ProductID: product.ID, CategoryID: category.ID})
	require.NoError(t, err)

	exists, err = repo.Exists(product.ID, category.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMappingRepository_CompositeKeyRejectsDuplicate(t *testing.T) {
	_, repo, category, product := setupMappingRepoTest(t)

	require.NoError(t, repo.Create(&model.ProductCategory{ProductID: product.ID, CategoryID: category.ID}))

	err := repo.Create(&model.ProductCategory{ProductID: product.ID, CategoryID: category.ID})
	assert.Error(t, err)
}

func TestMappingRepository_Delete(t *testing.T) {
	_, repo, category, product := setupMappingRepoTest(t)

	require.NoError(t, repo.Create(&model.ProductCategory{ProductID: product.ID, CategoryID: category.ID}))

	deleted, err := repo.Delete(product.ID, category.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Second delete finds nothing
	deleted, err = repo.Delete(product.ID, category.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMappingRepository_CountsByProducts_ZeroFilled(t *testing.T) {
	testDB, repo, category, product := setupMappingRepoTest(t)

	other := &model.Product{ID: "P2", Name: "Desk Chair"}
	require.NoError(t, testDB.Create(other).Error)

	require.NoError(t, repo.Create(&model.ProductCategory{ProductID: product.ID, CategoryID: category.ID}))

	counts, err := repo.CountsByProducts([]string{"P1", "P2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["P1"])
	assert.Equal(t, int64(0), counts["P2"])
}

func TestMappingRepository_CategoryNamesByProduct(t *testing.T) {
	testDB, repo, category, product := setupMappingRepoTest(t)

	second := &model.Category{Name: "Business", Level: 1}
	require.NoError(t, testDB.Create(second).Error)

	require.NoError(t, repo.Create(&model.ProductCategory{ProductID: product.ID, CategoryID: category.ID}))
	require.NoError(t, repo.Create(&model.ProductCategory{ProductID: product.ID, CategoryID: second.ID}))

	names, err := repo.CategoryNamesByProduct()
	require.NoError(t, err)
	assert.Equal(t, []string{"Business", "Electronics"}, names["P1"])
}

func TestMappingRepository_ProductsByCategory(t *testing.T) {
	testDB, repo, category, product := setupMappingRepoTest(t)

	other := &model.Product{ID: "P2", Name: "aspire 5"}
	require.NoError(t, testDB.Create(other).Error)

	require.NoError(t, repo.Create(&model.ProductCategory{ProductID: product.ID, CategoryID: category.ID}))
	require.NoError(t, repo.Create(&model.ProductCategory{ProductID: other.ID, CategoryID: category.ID}))

	products, err := repo.ProductsByCategory(category.ID)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "P2", products[0].ID)
	assert.Equal(t, "P1", products[1].ID)
}

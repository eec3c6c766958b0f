package repository

import (
	"testing"

	"github.com/ikkim/tagmanager-backend/internal/app/model"
	"github.com/ikkim/tagmanager-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCategoryRepoTest(t *testing.T) (*gorm.DB, CategoryRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return testDB, NewCategoryRepository(testDB)
}

func createCategory(t *testing.T, repo CategoryRepository, name string, level int, parentID *uint) *model.Category {
	category := &model.Category{Name: name, Level: level, ParentID: parentID}
	require.NoError(t, repo.Create(category))
	return category
}

func TestCategoryRepository_CreateAndFind(t *testing.T) {
	_, repo := setupCategoryRepoTest(t)

	created := createCategory(t, repo, "Electronics", 1, nil)
	assert.NotZero(t, created.ID)

	found, err := repo.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Electronics", found.Name)
	assert.Equal(t, 1, found.Level)
	assert.Nil(t, found.ParentID)
}

func TestCategoryRepository_FindSibling_CaseInsensitive(t *testing.T) {
	_, repo := setupCategoryRepoTest(t)

	created := createCategory(t, repo, "Electronics", 1, nil)

	sibling, err := repo.FindSibling("eLeCtRoNiCs", 1, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, created.ID, sibling.ID)

	// Excluding the category itself finds nothing
	_, err = repo.FindSibling("electronics", 1, nil, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Different level does not match
	_, err = repo.FindSibling("electronics", 2, &created.ID, 0)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCategoryRepository_FindChildren_SortedAndAnnotated(t *testing.T) {
	_, repo := setupCategoryRepoTest(t)

	parent := createCategory(t, repo, "Electronics", 1, nil)
	createCategory(t, repo, "phones", 2, &parent.ID)
	withGrandchild := createCategory(t, repo, "Computers", 2, &parent.ID)
	createCategory(t, repo, "Laptops", 3, &withGrandchild.ID)

	children, err := repo.FindChildren(&parent.ID, 2)
	require.NoError(t, err)
	require.Len(t, children, 2)

	// Case-insensitive name order
	assert.Equal(t, "Computers", children[0].Name)
	assert.Equal(t, "phones", children[1].Name)

	assert.True(t, children[0].HasChildren)
	assert.False(t, children[1].HasChildren)
}

func TestCategoryRepository_CountAndChildNames(t *testing.T) {
	_, repo := setupCategoryRepoTest(t)

	parent := createCategory(t, repo, "Electronics", 1, nil)
	createCategory(t, repo, "Phones", 2, &parent.ID)
	createCategory(t, repo, "Computers", 2, &parent.ID)

	count, err := repo.CountChildren(parent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	names, err := repo.ChildNames(parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Computers", "Phones"}, names)

	total, err := repo.CountAll()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestCategoryRepository_UniqueIndexEnforced(t *testing.T) {
	_, repo := setupCategoryRepoTest(t)

	parent := createCategory(t, repo, "Electronics", 1, nil)
	createCategory(t, repo, "Computers", 2, &parent.ID)

	// Exact duplicate under the same parent violates the composite index
	err := repo.Create(&model.Category{Name: "Computers", Level: 2, ParentID: &parent.ID})
	assert.Error(t, err)
}

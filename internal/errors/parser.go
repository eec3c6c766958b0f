package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ParseStoreError translates a storage layer failure into one of the
// engine error kinds. The engines run best-effort pre-checks, but the
// store's constraints are the final arbiter: a duplicate name or a
// duplicate mapping that races past the pre-check comes back here as a
// constraint violation and must surface as the same kind the pre-check
// would have produced.
func ParseStoreError(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFound(ResourceNotFound, op, "requested record not found")
	}

	errStr := strings.ToLower(err.Error())

	// Unique constraint violation (Postgres 23505, SQLite "UNIQUE constraint failed")
	if strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "unique constraint") {
		if strings.Contains(errStr, "idx_categories_name_level_parent") ||
			strings.Contains(errStr, "categories.name") {
			return NewConflict(CategoryNameExists,
				"a category with this name already exists at this level under this parent", nil)
		}
		if strings.Contains(errStr, "product_category_mappings") {
			return NewConflict(MappingAlreadyExists,
				"this category is already assigned to the product", nil)
		}
		return NewConflict(ResourceAlreadyExists, "record already exists", nil)
	}

	// Foreign key violation (Postgres 23503, SQLite "FOREIGN KEY constraint failed")
	if strings.Contains(errStr, "foreign key constraint") {
		if strings.Contains(errStr, "still referenced") {
			return NewConflict(ResourceConflict,
				"record is still referenced and cannot be deleted", nil)
		}
		if strings.Contains(errStr, "product_id") {
			return NewNotFound(ProductNotFound, "product", "referenced product does not exist")
		}
		if strings.Contains(errStr, "category_id") || strings.Contains(errStr, "parent_id") {
			return NewNotFound(CategoryNotFound, "category", "referenced category does not exist")
		}
		return NewNotFound(ResourceNotFound, op, "referenced record does not exist")
	}

	// Not-null violation (Postgres 23502)
	if strings.Contains(errStr, "null value") && strings.Contains(errStr, "not-null constraint") {
		return NewValidation(ValidationRequired, "", "a required field is missing")
	}

	return NewStorage(op, err)
}

package errors

// Error code constants returned in the "error" field of every error
// response. Format: CATEGORY_SPECIFIC_DETAIL. Clients map these codes
// to their own messages.

const (
	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput   = "VALIDATION_INVALID_INPUT"   // malformed request body
	ValidationInvalidID      = "VALIDATION_INVALID_ID"      // unparseable id in path/body
	ValidationRequired       = "VALIDATION_REQUIRED"        // required field missing
	ValidationTooLong        = "VALIDATION_TOO_LONG"        // field exceeds max length
	ValidationInvalidFormat  = "VALIDATION_INVALID_FORMAT"  // disallowed characters
	ValidationInvalidLevel   = "VALIDATION_INVALID_LEVEL"   // level outside 1..3
	ValidationParentRequired = "VALIDATION_PARENT_REQUIRED" // level 2/3 without parent
	ValidationParentLevel    = "VALIDATION_PARENT_LEVEL"    // parent not exactly one level above
	ValidationParentProvided = "VALIDATION_PARENT_PROVIDED" // level 1 with parent
	ValidationEmptyBatch     = "VALIDATION_EMPTY_BATCH"     // bulk call with empty id list

	// ==================== Category (CATEGORY_) ====================
	CategoryNotFound    = "CATEGORY_NOT_FOUND"    // no such category
	CategoryNameExists  = "CATEGORY_NAME_EXISTS"  // duplicate sibling name
	CategoryHasChildren = "CATEGORY_HAS_CHILDREN" // deletion blocked by children

	// ==================== Product (PRODUCT_) ====================
	ProductNotFound = "PRODUCT_NOT_FOUND" // no such product

	// ==================== Mapping (MAPPING_) ====================
	MappingNotFound      = "MAPPING_NOT_FOUND"      // product has no such category assigned
	MappingAlreadyExists = "MAPPING_ALREADY_EXISTS" // duplicate assignment

	// ==================== Generic resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)

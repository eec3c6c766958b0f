package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the uniform error body across all endpoints.
type ErrorResponse struct {
	Error   string                 `json:"error"`             // error code (codes.go)
	Message string                 `json:"message"`           // human readable message
	Details map[string]interface{} `json:"details,omitempty"` // structured context (field, resource, counts)
}

// RespondWithError writes the uniform error body.
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details map[string]interface{}) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
		Details: details,
	})
}

// Shortcut responders for the common cases.

func BadRequest(c *gin.Context, errorCode, message string, details map[string]interface{}) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message, details)
}

func NotFound(c *gin.Context, errorCode, message string, details map[string]interface{}) {
	RespondWithError(c, http.StatusNotFound, errorCode, message, details)
}

func Conflict(c *gin.Context, errorCode, message string, details map[string]interface{}) {
	RespondWithError(c, http.StatusConflict, errorCode, message, details)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "An internal error occurred, please try again later"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message, nil)
}

// HandleServiceError maps an engine error to the matching HTTP response.
// Status selection: 400 validation, 404 not-found, 409 conflict, 500 storage.
func HandleServiceError(c *gin.Context, err error) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		details := map[string]interface{}{}
		if validationErr.Field != "" {
			details["field"] = validationErr.Field
		}
		BadRequest(c, validationErr.Code, validationErr.Message, details)
		return
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		details := map[string]interface{}{}
		if notFoundErr.Resource != "" {
			details["resource"] = notFoundErr.Resource
		}
		NotFound(c, notFoundErr.Code, notFoundErr.Message, details)
		return
	}

	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		Conflict(c, conflictErr.Code, conflictErr.Message, conflictErr.Details)
		return
	}

	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		RespondWithError(c, http.StatusInternalServerError, InternalDatabaseError,
			"A storage error occurred, please try again later", nil)
		return
	}

	InternalError(c, "")
}

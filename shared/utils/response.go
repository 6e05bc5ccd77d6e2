package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storeops/retail-platform/shared/apperr"
)

// APIResponse is the standard response envelope for every service.
// Business meaning travels in the body, not just the status code.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

// SuccessResponse sends a successful response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SuccessWithWarning sends a successful response carrying a warning, used
// for partial-success outcomes such as approval with failed credential
// provisioning.
func SuccessWithWarning(c *gin.Context, statusCode int, message, warning string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Warning: warning,
	})
}

// ErrorResponse sends an error response
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error:   message,
	})
}

// BadRequestResponse sends a 400 Bad Request response
func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

// UnauthorizedResponse sends a 401 Unauthorized response
func UnauthorizedResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, message)
}

// ForbiddenResponse sends a 403 Forbidden response
func ForbiddenResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, message)
}

// NotFoundResponse sends a 404 Not Found response
func NotFoundResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message)
}

// ConflictResponse sends a 409 Conflict response
func ConflictResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, message)
}

// InternalServerErrorResponse sends a 500 Internal Server Error response
func InternalServerErrorResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, message)
}

// ServiceUnavailableResponse sends a 503 Service Unavailable response
func ServiceUnavailableResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, message)
}

// CreatedResponse sends a 201 Created response
func CreatedResponse(c *gin.Context, message string, data interface{}) {
	SuccessResponse(c, http.StatusCreated, message, data)
}

// OKResponse sends a 200 OK response
func OKResponse(c *gin.Context, message string, data interface{}) {
	SuccessResponse(c, http.StatusOK, message, data)
}

// RespondError maps an application error onto the response envelope
func RespondError(c *gin.Context, err error) {
	message := err.Error()
	switch apperr.CodeOf(err) {
	case apperr.CodeValidation:
		BadRequestResponse(c, message)
	case apperr.CodeNotFound:
		NotFoundResponse(c, message)
	case apperr.CodeInvalidState, apperr.CodeProtectedFeature:
		ConflictResponse(c, message)
	case apperr.CodeAuthentication:
		UnauthorizedResponse(c, message)
	case apperr.CodeAuthorization:
		ForbiddenResponse(c, message)
	case apperr.CodeCorruptBackup:
		ErrorResponse(c, http.StatusUnprocessableEntity, message)
	default:
		InternalServerErrorResponse(c, message)
	}
}

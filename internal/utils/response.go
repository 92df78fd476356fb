// internal/utils/response.go
package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the request ID
const RequestIDKey = "request_id"

// APIResponse is the envelope every REST endpoint answers with
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIError carries a machine readable code next to the message
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

var errorCodes = map[int]string{
	http.StatusBadRequest:          "BAD_REQUEST",
	http.StatusForbidden:           "FORBIDDEN",
	http.StatusNotFound:            "NOT_FOUND",
	http.StatusMethodNotAllowed:    "METHOD_NOT_ALLOWED",
	http.StatusInternalServerError: "INTERNAL_SERVER_ERROR",
	http.StatusServiceUnavailable:  "SERVICE_UNAVAILABLE",
	http.StatusGatewayTimeout:      "TIMEOUT",
}

// SuccessResponse sends a successful response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, envelope(c, true, message, data, nil))
}

// ListResponse sends a collection under key together with its size
func ListResponse(c *gin.Context, message, key string, items interface{}, count int) {
	SuccessResponse(c, http.StatusOK, message, gin.H{
		"count": count,
		key:     items,
	})
}

// ErrorResponse sends an error response. err only feeds the details field.
func ErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	apiError := &APIError{
		Code:    ErrorCode(statusCode),
		Message: message,
	}
	if err != nil {
		apiError.Details = err.Error()
	}

	c.JSON(statusCode, envelope(c, false, message, nil, apiError))
}

// AbortWithError sends an error response and stops the handler chain
func AbortWithError(c *gin.Context, statusCode int, message string, err error) {
	ErrorResponse(c, statusCode, message, err)
	c.Abort()
}

// ValidationErrorResponse reports rejected query or body fields
func ValidationErrorResponse(c *gin.Context, fields map[string]string) {
	apiError := &APIError{
		Code:    "VALIDATION_ERROR",
		Message: "Request validation failed",
	}

	c.JSON(http.StatusBadRequest, envelope(c, false, "Validation failed",
		gin.H{"validation_errors": fields}, apiError))
}

// ErrorCode maps an HTTP status to the envelope error code
func ErrorCode(statusCode int) string {
	if code, ok := errorCodes[statusCode]; ok {
		return code
	}
	return "UNKNOWN_ERROR"
}

func envelope(c *gin.Context, success bool, message string, data interface{}, apiError *APIError) APIResponse {
	return APIResponse{
		Success:   success,
		Message:   message,
		Data:      data,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: c.GetString(RequestIDKey),
	}
}

package response

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/chyrplite/core/internal/pkg/apierror"
	"github.com/gin-gonic/gin"
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	TotalPage   int   `json:"total_page"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"has_next_page"`
}

// pagedResponse is the envelope for paginated list responses.
type pagedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// errorBody is the uniform error shape: {code, message, details?}.
type errorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// OK sends a 200 response. Arrays/slices are wrapped in {data: [...]}.
func OK(c *gin.Context, data interface{}) {
	if data != nil {
		v := reflect.ValueOf(data)
		if v.Kind() == reflect.Slice {
			c.JSON(http.StatusOK, gin.H{"data": data})
			return
		}
	}
	c.JSON(http.StatusOK, data)
}

// Paged sends a paginated response.
func Paged(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, pagedResponse{Data: data, Pagination: pagination})
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, message, nil)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	abort(c, http.StatusUnauthorized, "authentication required", nil)
}

// Forbidden sends a 403 error response. The body never explains which
// capability was missing.
func Forbidden(c *gin.Context) {
	abort(c, http.StatusForbidden, "forbidden", nil)
}

// NotFound sends a 404 error response. Hidden resources render the same way
// so their existence does not leak.
func NotFound(c *gin.Context) {
	abort(c, http.StatusNotFound, "not found", nil)
}

// UnprocessableEntity sends a 422 error response with field details.
func UnprocessableEntity(c *gin.Context, message string, details map[string]string) {
	abort(c, http.StatusUnprocessableEntity, message, details)
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	abort(c, http.StatusConflict, message, nil)
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context, err error) {
	abort(c, http.StatusInternalServerError, err.Error(), nil)
}

// FromError renders a classified error with its mapped HTTP status.
func FromError(c *gin.Context, err error) {
	switch apierror.KindOf(err) {
	case apierror.KindValidation:
		var details map[string]string
		var ae *apierror.Error
		if errors.As(err, &ae) {
			details = ae.Details
		}
		abort(c, http.StatusUnprocessableEntity, err.Error(), details)
	case apierror.KindUnauthorized:
		Unauthorized(c)
	case apierror.KindPermission:
		Forbidden(c)
	case apierror.KindNotVisible, apierror.KindNotFound:
		NotFound(c)
	case apierror.KindConflict:
		Conflict(c, err.Error())
	case apierror.KindStorageTransient:
		abort(c, http.StatusServiceUnavailable, "storage temporarily unavailable", nil)
	default:
		InternalError(c, err)
	}
}

func abort(c *gin.Context, code int, message string, details map[string]string) {
	c.AbortWithStatusJSON(code, errorBody{Code: code, Message: message, Details: details})
}

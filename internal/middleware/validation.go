package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/temcen/myndreader/internal/validation"
	"github.com/temcen/myndreader/pkg/models"
)

// ValidationMiddleware checks request bodies against JSON schemas and the
// common path and query parameters against their ranges.
type ValidationMiddleware struct {
	validator *validation.SchemaValidator
}

func NewValidationMiddleware(validator *validation.SchemaValidator) *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validator,
	}
}

// ValidateBody rejects bodies that do not match schemaName. The body is
// restored for the handler.
func (vm *ValidationMiddleware) ValidateBody(schemaName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodDelete {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			vm.sendValidationError(c, "BODY_READ_ERROR", "Failed to read request body", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if len(bytes.TrimSpace(bodyBytes)) == 0 {
			vm.sendValidationError(c, "EMPTY_BODY", "Request body is required", nil)
			return
		}
		if !json.Valid(bodyBytes) {
			vm.sendValidationError(c, "INVALID_JSON", "Request body must be valid JSON", nil)
			return
		}

		result := vm.validator.Validate(schemaName, bodyBytes)
		if !result.Valid {
			apiError := result.ToAPIError()
			if errorObj, ok := apiError["error"].(map[string]interface{}); ok {
				vm.decorate(c, errorObj)
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, apiError)
			return
		}

		c.Next()
	}
}

// pathIDs are the numeric path parameters used by the API.
var pathIDs = []string{"userId", "bookId", "readingId"}

// ValidateParams checks numeric ids in the path and the shared query
// parameters. Route specific bounds are left to the handlers.
func (vm *ValidationMiddleware) ValidateParams() gin.HandlerFunc {
	return func(c *gin.Context) {
		errs := make([]validation.ValidationError, 0)

		for _, name := range pathIDs {
			if value := c.Param(name); value != "" {
				if !isIntInRange(value, 1, -1) {
					errs = append(errs, validation.ValidationError{
						Field:   name,
						Message: fmt.Sprintf("%s must be a positive integer", name),
						Code:    "INVALID_PATH_PARAM",
						Value:   value,
					})
				}
			}
		}

		if skip := c.Query("skip"); skip != "" && !isIntInRange(skip, 0, -1) {
			errs = append(errs, validation.ValidationError{
				Field:   "skip",
				Message: "Skip must be a non-negative integer",
				Code:    "INVALID_QUERY_PARAM",
				Value:   skip,
			})
		}

		if limit := c.Query("limit"); limit != "" && !isIntInRange(limit, 1, 1000) {
			errs = append(errs, validation.ValidationError{
				Field:   "limit",
				Message: "Limit must be an integer between 1 and 1000",
				Code:    "INVALID_QUERY_PARAM",
				Value:   limit,
			})
		}

		if minRating := c.Query("min_rating"); minRating != "" {
			if f, err := strconv.ParseFloat(minRating, 64); err != nil || f < 0 || f > 5 {
				errs = append(errs, validation.ValidationError{
					Field:   "min_rating",
					Message: "Min rating must be a number between 0 and 5",
					Code:    "INVALID_QUERY_PARAM",
					Value:   minRating,
				})
			}
		}

		if maxPages := c.Query("max_page_count"); maxPages != "" && !isIntInRange(maxPages, 1, -1) {
			errs = append(errs, validation.ValidationError{
				Field:   "max_page_count",
				Message: "Max page count must be a positive integer",
				Code:    "INVALID_QUERY_PARAM",
				Value:   maxPages,
			})
		}

		if status := c.Query("status"); status != "" && !models.ReadingStatus(status).Valid() {
			errs = append(errs, validation.ValidationError{
				Field:   "status",
				Message: "Status must be one of: reading, completed, want_to_read, abandoned",
				Code:    "INVALID_QUERY_PARAM",
				Value:   status,
			})
		}

		level := c.Query("comfort_level")
		if _, err := models.ParseComfortLevel(level); err != nil {
			names := make([]string, 0, len(models.ComfortLevels()))
			for _, l := range models.ComfortLevels() {
				names = append(names, l.String())
			}
			errs = append(errs, validation.ValidationError{
				Field:   "comfort_level",
				Message: fmt.Sprintf("Comfort level must be one of: %s", strings.Join(names, ", ")),
				Code:    "INVALID_QUERY_PARAM",
				Value:   level,
			})
		}

		if excludeRead := c.Query("exclude_read"); excludeRead != "" {
			if _, err := strconv.ParseBool(excludeRead); err != nil {
				errs = append(errs, validation.ValidationError{
					Field:   "exclude_read",
					Message: "Exclude read must be true or false",
					Code:    "INVALID_QUERY_PARAM",
					Value:   excludeRead,
				})
			}
		}

		if len(errs) > 0 {
			vm.sendValidationErrors(c, errs)
			return
		}

		c.Next()
	}
}

// ValidateHeaders requires a JSON content type on requests with a body.
func (vm *ValidationMiddleware) ValidateHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut {
			c.Next()
			return
		}

		contentType := c.GetHeader("Content-Type")
		switch {
		case contentType == "":
			vm.sendValidationErrors(c, []validation.ValidationError{{
				Field:   "Content-Type",
				Message: "Content-Type header is required",
				Code:    "MISSING_HEADER",
			}})
		case !strings.Contains(contentType, "application/json"):
			vm.sendValidationErrors(c, []validation.ValidationError{{
				Field:   "Content-Type",
				Message: "Content-Type must be application/json",
				Code:    "INVALID_HEADER",
				Value:   contentType,
			}})
		default:
			c.Next()
		}
	}
}

// isIntInRange parses value as an integer within [min, max]. A negative max
// means unbounded.
func isIntInRange(value string, min, max int64) bool {
	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false
	}
	return num >= min && (max < 0 || num <= max)
}

func (vm *ValidationMiddleware) decorate(c *gin.Context, errorObj map[string]interface{}) {
	errorObj["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	errorObj["requestId"] = c.GetString(ContextRequestID)
	errorObj["path"] = c.Request.URL.Path
	errorObj["method"] = c.Request.Method
}

func (vm *ValidationMiddleware) sendValidationError(c *gin.Context, code, message string, details map[string]interface{}) {
	errorObj := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if details != nil {
		errorObj["details"] = details
	}
	vm.decorate(c, errorObj)

	c.AbortWithStatusJSON(http.StatusBadRequest, map[string]interface{}{"error": errorObj})
}

func (vm *ValidationMiddleware) sendValidationErrors(c *gin.Context, errs []validation.ValidationError) {
	result := &validation.ValidationResult{Valid: false, Errors: errs}
	apiError := result.ToAPIError()
	if errorObj, ok := apiError["error"].(map[string]interface{}); ok {
		vm.decorate(c, errorObj)
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, apiError)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/services"
)

const (
	msgNoRecommendations      = "No recommendations found. Try adjusting your filters or comfort level."
	msgNoComfortLevelResults  = "No recommendations found for any comfort level."
	msgUserNotFound           = "User not found"
	msgBookNotFound           = "Book not found"
	msgReadingNotFound        = "Reading entry not found"
	msgDuplicateUser          = "User with this email or username already exists"
	msgDuplicateReading       = "Reading entry already exists for this book"
	msgDuplicateBook          = "Book with this ISBN already exists"
	msgDuplicateAuthor        = "Author already exists"
	msgDuplicateGenre         = "Genre already exists"
	msgInvalidRequestBody     = "Invalid JSON format"
	msgRequestValidationError = "Request validation failed"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// errorMessages overrides the default message of a sentinel error for one
// endpoint.
type errorMessages map[error]string

func (m errorMessages) get(err error, fallback string) string {
	for target, message := range m {
		if errors.Is(err, target) {
			return message
		}
	}
	return fallback
}

// respondServiceError maps service errors to HTTP responses. Anything that
// is not a known sentinel is logged and reported as a 500.
func respondServiceError(c *gin.Context, logger *logrus.Logger, err error, messages errorMessages) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", messages.get(err, msgUserNotFound))
	case errors.Is(err, services.ErrBookNotFound):
		respondError(c, http.StatusNotFound, "BOOK_NOT_FOUND", messages.get(err, msgBookNotFound))
	case errors.Is(err, services.ErrReadingNotFound):
		respondError(c, http.StatusNotFound, "READING_NOT_FOUND", messages.get(err, msgReadingNotFound))
	case errors.Is(err, services.ErrNoRecommendations):
		respondError(c, http.StatusNotFound, "NO_RECOMMENDATIONS", messages.get(err, msgNoRecommendations))
	case errors.Is(err, services.ErrDuplicate):
		respondError(c, http.StatusBadRequest, "ALREADY_EXISTS", messages.get(err, err.Error()))
	case errors.Is(err, services.ErrInvalidComfortLevel), errors.Is(err, services.ErrInvalidLanguage):
		respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, services.ErrInvalidAPIKey):
		respondError(c, http.StatusUnauthorized, "INVALID_API_KEY", "Invalid API key")
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// bindJSON decodes the body into req and runs its validate tags. It writes
// the 400 response itself and reports whether the handler may continue.
func bindJSON(c *gin.Context, v *validator.Validate, logger *logrus.Logger, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.WithError(err).Debug("Invalid JSON in request body")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_JSON",
				"message": msgInvalidRequestBody,
				"details": err.Error(),
			},
		})
		return false
	}
	if err := v.Struct(req); err != nil {
		logger.WithError(err).Debug("Request validation failed")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": msgRequestValidationError,
				"details": fieldErrors(err),
			},
		})
		return false
	}
	return true
}

func fieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// idParam reads a positive integer path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}

// intQuery reads an optional integer query parameter bounded by [min, max].
func intQuery(c *gin.Context, name string, def, min, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < min || value > max {
		respondError(c, http.StatusBadRequest, "INVALID_QUERY_PARAM",
			name+" must be an integer between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
		return 0, false
	}
	return value, true
}

func boolQuery(c *gin.Context, name string, def bool) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_QUERY_PARAM", name+" must be true or false")
		return false, false
	}
	return value, true
}

func floatQuery(c *gin.Context, name string, min, max float64) (*float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < min || value > max {
		respondError(c, http.StatusBadRequest, "INVALID_QUERY_PARAM",
			name+" must be a number between "+strconv.FormatFloat(min, 'f', -1, 64)+" and "+strconv.FormatFloat(max, 'f', -1, 64))
		return nil, false
	}
	return &value, true
}

const maxInt = int(^uint(0) >> 1)

func optionalIntQuery(c *gin.Context, name string, min int) (*int, bool) {
	if c.Query(name) == "" {
		return nil, true
	}
	value, ok := intQuery(c, name, 0, min, maxInt)
	if !ok {
		return nil, false
	}
	return &value, true
}

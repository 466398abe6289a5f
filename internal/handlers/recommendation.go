package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/services"
	"github.com/temcen/myndreader/pkg/models"
)

const (
	maxComparisonLimit   = 20
	defaultSimilarLimit  = 10
	maxDetailedOrSimilar = models.MaxRecommendationLimit
)

type RecommendationHandler struct {
	recommendations services.RecommendationServiceInterface
	validator       *validator.Validate
	logger          *logrus.Logger
}

func NewRecommendationHandler(recommendations services.RecommendationServiceInterface, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recommendations: recommendations,
		validator:       validator.New(),
		logger:          logger,
	}
}

// Recommend takes a RecommendationRequest body. Omitted fields keep their
// defaults.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}

	req := models.NewRecommendationRequest()
	if !bindJSON(c, h.validator, h.logger, &req) {
		return
	}

	resp, err := h.recommendations.Recommend(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Detailed returns every recommended book with its score and reasons.
func (h *RecommendationHandler) Detailed(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}

	req, ok := h.requestFromQuery(c)
	if !ok {
		return
	}

	books, err := h.recommendations.RecommendDetailed(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, books)
}

// CompareComfortLevels returns one recommendation set per comfort level.
func (h *RecommendationHandler) CompareComfortLevels(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", services.DefaultComparisonLimit, 1, maxComparisonLimit)
	if !ok {
		return
	}
	excludeRead, ok := boolQuery(c, "exclude_read", true)
	if !ok {
		return
	}

	responses, err := h.recommendations.CompareComfortLevels(c.Request.Context(), userID, limit, excludeRead)
	if err != nil {
		respondServiceError(c, h.logger, err, errorMessages{services.ErrNoRecommendations: msgNoComfortLevelResults})
		return
	}

	c.JSON(http.StatusOK, responses)
}

func (h *RecommendationHandler) Similar(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	bookID, ok := idParam(c, "bookId")
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", defaultSimilarLimit, 1, maxDetailedOrSimilar)
	if !ok {
		return
	}

	books, err := h.recommendations.SimilarBooks(c.Request.Context(), userID, bookID, limit)
	if err != nil {
		respondServiceError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, books)
}

func (h *RecommendationHandler) requestFromQuery(c *gin.Context) (models.RecommendationRequest, bool) {
	req := models.NewRecommendationRequest()

	level, err := models.ParseComfortLevel(c.Query("comfort_level"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return req, false
	}
	req.ComfortLevel = level

	var ok bool
	if req.Limit, ok = intQuery(c, "limit", models.DefaultRecommendationLimit, 1, maxDetailedOrSimilar); !ok {
		return req, false
	}
	if req.ExcludeRead, ok = boolQuery(c, "exclude_read", true); !ok {
		return req, false
	}
	if req.UsePreferences, ok = boolQuery(c, "use_preferences", false); !ok {
		return req, false
	}
	if req.MinRating, ok = floatQuery(c, "min_rating", 0, 5); !ok {
		return req, false
	}
	if req.MaxPageCount, ok = optionalIntQuery(c, "max_page_count", 1); !ok {
		return req, false
	}
	req.PreferredGenres = splitList(c.QueryArray("preferred_genres"))

	return req, true
}

// splitList accepts both repeated parameters and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

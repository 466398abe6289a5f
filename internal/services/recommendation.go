package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/config"
	"github.com/temcen/myndreader/internal/recommender"
	"github.com/temcen/myndreader/internal/store"
	"github.com/temcen/myndreader/pkg/models"
)

const DefaultComparisonLimit = 5

type RecommendationService struct {
	store        RecommendationStore
	engine       *recommender.Recommender
	preferences  PreferenceCache
	metrics      *RecommendationMetrics
	logger       *logrus.Logger
	defaultLimit int
	maxLimit     int
}

func NewRecommendationService(
	recStore RecommendationStore,
	engine *recommender.Recommender,
	preferences PreferenceCache,
	metrics *RecommendationMetrics,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
) *RecommendationService {
	s := &RecommendationService{
		store:        recStore,
		engine:       engine,
		preferences:  preferences,
		metrics:      metrics,
		logger:       logger,
		defaultLimit: models.DefaultRecommendationLimit,
		maxLimit:     models.MaxRecommendationLimit,
	}
	if cfg != nil {
		if cfg.DefaultLimit > 0 {
			s.defaultLimit = cfg.DefaultLimit
		}
		if cfg.MaxLimit > 0 {
			s.maxLimit = cfg.MaxLimit
		}
	}
	return s
}

// Recommend returns the ranked books for userID together with a comfort
// level explanation. An empty list is reported as ErrNoRecommendations.
func (s *RecommendationService) Recommend(ctx context.Context, userID int64, req models.RecommendationRequest) (*models.RecommendationResponse, error) {
	books, req, err := s.recommend(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	return buildResponse(req.ComfortLevel, books), nil
}

// RecommendDetailed is Recommend without the summary: every book keeps its
// score and reasons.
func (s *RecommendationService) RecommendDetailed(ctx context.Context, userID int64, req models.RecommendationRequest) ([]models.ScoredBook, error) {
	books, _, err := s.recommend(ctx, userID, req)
	return books, err
}

// CompareComfortLevels runs the same request at every comfort level, in
// order, and keeps the levels that produced books.
func (s *RecommendationService) CompareComfortLevels(ctx context.Context, userID int64, limit int, excludeRead bool) ([]models.RecommendationResponse, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultComparisonLimit
	}

	responses := make([]models.RecommendationResponse, 0, len(models.ComfortLevels()))
	for _, level := range models.ComfortLevels() {
		req := models.RecommendationRequest{
			ComfortLevel: level,
			Limit:        limit,
			ExcludeRead:  excludeRead,
		}

		books, err := s.run(ctx, userID, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.WithError(err).WithFields(logrus.Fields{
				"user_id":       userID,
				"comfort_level": level,
			}).Warn("Skipping comfort level")
			continue
		}
		if len(books) == 0 {
			continue
		}
		responses = append(responses, *buildResponse(level, books))
	}

	if len(responses) == 0 {
		return nil, ErrNoRecommendations
	}
	return responses, nil
}

// SimilarBooks lists books that share genres and authors with bookID and
// that the user has not read or abandoned.
func (s *RecommendationService) SimilarBooks(ctx context.Context, userID, bookID int64, limit int) ([]models.Book, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	seed, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}

	books, err := s.store.SimilarBooks(ctx, userID, *seed, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to find similar books: %w", err)
	}
	return books, nil
}

func (s *RecommendationService) recommend(ctx context.Context, userID int64, req models.RecommendationRequest) ([]models.ScoredBook, models.RecommendationRequest, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, req, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, req, err
	}
	if req.UsePreferences {
		req = s.applyPreferences(ctx, userID, req)
	}

	books, err := s.run(ctx, userID, req)
	if err != nil {
		return nil, req, err
	}
	if len(books) == 0 {
		return nil, req, ErrNoRecommendations
	}
	return books, req, nil
}

// run calls the engine and records metrics and a log line.
func (s *RecommendationService) run(ctx context.Context, userID int64, req models.RecommendationRequest) ([]models.ScoredBook, error) {
	start := time.Now()
	result, err := s.engine.Recommend(ctx, userID, req)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":       userID,
			"comfort_level": req.ComfortLevel,
		}).Error("Recommendation failed")
		return nil, err
	}

	elapsed := time.Since(start)
	s.metrics.observe(req.ComfortLevel.String(), string(result.Path), elapsed.Seconds(), len(result.Books) == 0)
	s.logger.WithFields(logrus.Fields{
		"user_id":       userID,
		"comfort_level": req.ComfortLevel,
		"path":          result.Path,
		"count":         len(result.Books),
		"duration_ms":   elapsed.Milliseconds(),
	}).Debug("Recommendations generated")

	return result.Books, nil
}

func (s *RecommendationService) normalize(req models.RecommendationRequest) (models.RecommendationRequest, error) {
	if req.ComfortLevel == models.ComfortLevelUnset {
		req.ComfortLevel = models.Balanced
	}
	if !req.ComfortLevel.Valid() {
		return req, fmt.Errorf("%w: %s", ErrInvalidComfortLevel, req.ComfortLevel)
	}
	req.Limit = s.clampLimit(req.Limit)
	return req, nil
}

func (s *RecommendationService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

func (s *RecommendationService) ensureUser(ctx context.Context, userID int64) error {
	exists, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

// applyPreferences fills filters the request left unset from the user's
// stored preferences. A failed lookup leaves the request unchanged.
func (s *RecommendationService) applyPreferences(ctx context.Context, userID int64, req models.RecommendationRequest) models.RecommendationRequest {
	pref := s.loadPreference(ctx, userID)
	if pref == nil {
		return req
	}

	if req.MinRating == nil || *req.MinRating <= 0 {
		req.MinRating = pref.MinRating
	}
	if req.MaxPageCount == nil || *req.MaxPageCount <= 0 {
		req.MaxPageCount = pref.MaxPageCount
	}
	if len(req.PreferredGenres) == 0 && len(pref.PreferredGenres) > 0 {
		req.PreferredGenres = pref.PreferredGenres
	}
	return req
}

func (s *RecommendationService) loadPreference(ctx context.Context, userID int64) *models.UserPreference {
	if s.preferences != nil {
		if pref := s.preferences.Get(ctx, userID); pref != nil {
			return pref
		}
	}

	pref, err := s.store.GetPreference(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		pref = models.DefaultPreference(userID)
	} else if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load preferences")
		return nil
	}

	if s.preferences != nil {
		s.preferences.Set(ctx, pref)
	}
	return pref
}

func buildResponse(level models.ComfortLevel, scored []models.ScoredBook) *models.RecommendationResponse {
	books := make([]models.Book, len(scored))
	for i, sb := range scored {
		books[i] = sb.Book
	}
	similarity := recommender.AverageScore(scored)
	return &models.RecommendationResponse{
		Books:           books,
		Explanation:     recommender.Explain(level, similarity),
		ComfortLevel:    level,
		SimilarityScore: similarity,
	}
}

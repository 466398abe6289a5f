package recommender

import (
	"context"
	"fmt"
	"sort"

	"github.com/temcen/myndreader/pkg/models"
)

const (
	coldStartMinRating       = 4.0
	coldStartMinRatingsCount = 100
)

// Path records which branch produced a result.
type Path string

const (
	PathColdStart    Path = "cold_start"
	PathPersonalized Path = "personalized"
)

// HistorySource lists a user's reading and completed readings with their books.
type HistorySource interface {
	ReadingHistory(ctx context.Context, userID int64) ([]models.Reading, error)
}

// CandidateSource supplies books eligible for recommendation.
type CandidateSource interface {
	Candidates(ctx context.Context, filter models.CandidateFilter) ([]models.Book, error)
	PopularBooks(ctx context.Context, filter models.PopularFilter) ([]models.Book, error)
}

// Result is a ranked recommendation list plus the branch that produced it.
type Result struct {
	Books []models.ScoredBook
	Path  Path
}

// Recommender ties profile extraction, comfort weights and scoring together.
// It keeps no per-request state and is safe for concurrent use.
type Recommender struct {
	history    HistorySource
	candidates CandidateSource
	scorer     *Scorer

	coldStartMinRating       float64
	coldStartMinRatingsCount int
}

func New(history HistorySource, candidates CandidateSource, scorer *Scorer) *Recommender {
	if scorer == nil {
		scorer = NewScorer(nil)
	}
	return &Recommender{
		history:    history,
		candidates: candidates,
		scorer:     scorer,

		coldStartMinRating:       coldStartMinRating,
		coldStartMinRatingsCount: coldStartMinRatingsCount,
	}
}

// WithColdStart overrides the popularity thresholds used for users without
// history. Non-positive values keep the defaults.
func (r *Recommender) WithColdStart(minRating float64, minRatingsCount int) *Recommender {
	if minRating > 0 {
		r.coldStartMinRating = minRating
	}
	if minRatingsCount > 0 {
		r.coldStartMinRatingsCount = minRatingsCount
	}
	return r
}

// Recommend ranks books for userID. An empty result is not an error, and a
// negative limit is treated as zero.
func (r *Recommender) Recommend(ctx context.Context, userID int64, req models.RecommendationRequest) (*Result, error) {
	if req.Limit < 0 {
		req.Limit = 0
	}

	readings, err := r.history.ReadingHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reading history: %w", err)
	}

	profile := ExtractProfile(readings)
	if profile == nil {
		books, err := r.coldStart(ctx, req)
		if err != nil {
			return nil, err
		}
		return &Result{Books: books, Path: PathColdStart}, nil
	}

	weights := WeightsFor(req.ComfortLevel)

	candidates, err := r.candidates.Candidates(ctx, models.CandidateFilter{
		UserID:       userID,
		ExcludeRead:  req.ExcludeRead,
		MinRating:    req.MinRating,
		MaxPageCount: req.MaxPageCount,
		Genres:       req.PreferredGenres,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate books: %w", err)
	}

	scored := make([]models.ScoredBook, 0, len(candidates))
	for _, book := range candidates {
		score, reasons := r.scorer.Score(book, profile, weights)
		scored = append(scored, models.ScoredBook{
			Book:    book,
			Score:   score,
			Reasons: reasons,
		})
	}

	// Equal scores keep the order the store returned them in.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > req.Limit {
		scored = scored[:req.Limit]
	}

	return &Result{Books: scored, Path: PathPersonalized}, nil
}

// coldStart recommends well-rated popular books to users without history.
func (r *Recommender) coldStart(ctx context.Context, req models.RecommendationRequest) ([]models.ScoredBook, error) {
	books, err := r.candidates.PopularBooks(ctx, models.PopularFilter{
		MinRating:       r.coldStartMinRating,
		MinRatingsCount: r.coldStartMinRatingsCount,
		Genres:          req.PreferredGenres,
		Limit:           req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load popular books: %w", err)
	}

	scored := make([]models.ScoredBook, 0, len(books))
	for _, book := range books {
		score := 0.0
		if book.AverageRating != nil {
			score = *book.AverageRating / 5.0
		}
		scored = append(scored, models.ScoredBook{
			Book:    book,
			Score:   score,
			Reasons: []string{"Popular and highly rated book", "Great for discovering new preferences"},
		})
	}

	if len(scored) > req.Limit {
		scored = scored[:req.Limit]
	}

	return scored, nil
}

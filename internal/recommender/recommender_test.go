package recommender

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/myndreader/pkg/models"
)

type MockHistorySource struct {
	mock.Mock
}

func (m *MockHistorySource) ReadingHistory(ctx context.Context, userID int64) ([]models.Reading, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reading), args.Error(1)
}

type MockCandidateSource struct {
	mock.Mock
}

func (m *MockCandidateSource) Candidates(ctx context.Context, filter models.CandidateFilter) ([]models.Book, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockCandidateSource) PopularBooks(ctx context.Context, filter models.PopularFilter) ([]models.Book, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func history() []models.Reading {
	return []models.Reading{
		reading(floatPtr(5.0), models.Book{ID: 1, Genres: []string{"Fantasy"}, AverageRating: floatPtr(4.2)}),
	}
}

func TestRecommender_ColdStart(t *testing.T) {
	ctx := context.Background()
	historySource := new(MockHistorySource)
	candidateSource := new(MockCandidateSource)

	historySource.On("ReadingHistory", ctx, int64(7)).Return([]models.Reading{}, nil)
	candidateSource.On("PopularBooks", ctx, models.PopularFilter{
		MinRating:       4.0,
		MinRatingsCount: 100,
		Genres:          []string{"Fantasy"},
		Limit:           5,
	}).Return([]models.Book{
		{ID: 10, AverageRating: floatPtr(4.6)},
		{ID: 11, AverageRating: floatPtr(4.1)},
	}, nil)

	rec := New(historySource, candidateSource, NewScorer(fixedRandom(0.9)))
	req := models.NewRecommendationRequest()
	req.Limit = 5
	req.PreferredGenres = []string{"Fantasy"}

	result, err := rec.Recommend(ctx, 7, req)
	require.NoError(t, err)

	assert.Equal(t, PathColdStart, result.Path)
	require.Len(t, result.Books, 2)
	assert.InDelta(t, 0.92, result.Books[0].Score, 1e-9)
	assert.Equal(t, []string{"Popular and highly rated book", "Great for discovering new preferences"}, result.Books[0].Reasons)
	assert.InDelta(t, 0.82, result.Books[1].Score, 1e-9)

	candidateSource.AssertNotCalled(t, "Candidates", mock.Anything, mock.Anything)
	historySource.AssertExpectations(t)
	candidateSource.AssertExpectations(t)
}

func TestRecommender_PersonalizedRanksAndTruncates(t *testing.T) {
	ctx := context.Background()
	historySource := new(MockHistorySource)
	candidateSource := new(MockCandidateSource)

	var pool []models.Book
	for i := 0; i < 10; i++ {
		pool = append(pool, models.Book{ID: int64(100 + i), Genres: []string{"Romance"}})
	}
	pool[4].Genres = []string{"Fantasy"}

	historySource.On("ReadingHistory", ctx, int64(1)).Return(history(), nil)
	candidateSource.On("Candidates", ctx, models.CandidateFilter{
		UserID:      1,
		ExcludeRead: true,
	}).Return(pool, nil)

	rec := New(historySource, candidateSource, NewScorer(fixedRandom(0)))
	req := models.NewRecommendationRequest()
	req.Limit = 3

	result, err := rec.Recommend(ctx, 1, req)
	require.NoError(t, err)

	assert.Equal(t, PathPersonalized, result.Path)
	require.Len(t, result.Books, 3)
	assert.Equal(t, int64(104), result.Books[0].Book.ID)
	// Ties keep store order.
	assert.Equal(t, int64(100), result.Books[1].Book.ID)
	assert.Equal(t, int64(101), result.Books[2].Book.ID)
	for i := 1; i < len(result.Books); i++ {
		assert.GreaterOrEqual(t, result.Books[i-1].Score, result.Books[i].Score)
	}
}

func TestRecommender_NegativeLimitReturnsNothing(t *testing.T) {
	ctx := context.Background()
	historySource := new(MockHistorySource)
	candidateSource := new(MockCandidateSource)

	historySource.On("ReadingHistory", ctx, int64(1)).Return(history(), nil)
	historySource.On("ReadingHistory", ctx, int64(2)).Return([]models.Reading{}, nil)
	candidateSource.On("Candidates", ctx, mock.Anything).
		Return([]models.Book{{ID: 100, Genres: []string{"Fantasy"}}}, nil)
	candidateSource.On("PopularBooks", ctx, mock.MatchedBy(func(f models.PopularFilter) bool {
		return f.Limit == 0
	})).Return([]models.Book{{ID: 10, AverageRating: floatPtr(4.6)}}, nil)

	rec := New(historySource, candidateSource, NewScorer(fixedRandom(0)))
	req := models.NewRecommendationRequest()
	req.Limit = -1

	for _, userID := range []int64{1, 2} {
		var result *Result
		var err error
		require.NotPanics(t, func() {
			result, err = rec.Recommend(ctx, userID, req)
		})
		require.NoError(t, err)
		assert.Empty(t, result.Books)
	}
	candidateSource.AssertExpectations(t)
}

func TestRecommender_StableTies(t *testing.T) {
	ctx := context.Background()
	historySource := new(MockHistorySource)
	candidateSource := new(MockCandidateSource)

	pool := []models.Book{{ID: 3}, {ID: 1}, {ID: 2}}
	historySource.On("ReadingHistory", ctx, int64(1)).Return(history(), nil)
	candidateSource.On("Candidates", ctx, mock.Anything).Return(pool, nil)

	rec := New(historySource, candidateSource, NewScorer(fixedRandom(0)))
	result, err := rec.Recommend(ctx, 1, models.NewRecommendationRequest())
	require.NoError(t, err)

	ids := []int64{}
	for _, b := range result.Books {
		ids = append(ids, b.Book.ID)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestRecommender_PassesFilters(t *testing.T) {
	ctx := context.Background()
	historySource := new(MockHistorySource)
	candidateSource := new(MockCandidateSource)

	minRating := 3.5
	maxPages := 400
	expected := models.CandidateFilter{
		UserID:       9,
		ExcludeRead:  false,
		MinRating:    &minRating,
		MaxPageCount: &maxPages,
		Genres:       []string{"Horror"},
	}

	historySource.On("ReadingHistory", ctx, int64(9)).Return(history(), nil)
	candidateSource.On("Candidates", ctx, expected).Return([]models.Book{}, nil)

	rec := New(historySource, candidateSource, nil)
	result, err := rec.Recommend(ctx, 9, models.RecommendationRequest{
		ComfortLevel:    models.Adventurous,
		Limit:           10,
		ExcludeRead:     false,
		MinRating:       &minRating,
		MaxPageCount:    &maxPages,
		PreferredGenres: []string{"Horror"},
	})

	require.NoError(t, err)
	assert.Empty(t, result.Books)
	candidateSource.AssertExpectations(t)
}

func TestRecommender_PropagatesStoreErrors(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection reset")

	t.Run("history", func(t *testing.T) {
		historySource := new(MockHistorySource)
		historySource.On("ReadingHistory", ctx, int64(1)).Return(nil, storeErr)

		_, err := New(historySource, new(MockCandidateSource), nil).Recommend(ctx, 1, models.NewRecommendationRequest())
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("candidates", func(t *testing.T) {
		historySource := new(MockHistorySource)
		candidateSource := new(MockCandidateSource)
		historySource.On("ReadingHistory", ctx, int64(1)).Return(history(), nil)
		candidateSource.On("Candidates", ctx, mock.Anything).Return(nil, storeErr)

		_, err := New(historySource, candidateSource, nil).Recommend(ctx, 1, models.NewRecommendationRequest())
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("popular", func(t *testing.T) {
		historySource := new(MockHistorySource)
		candidateSource := new(MockCandidateSource)
		historySource.On("ReadingHistory", ctx, int64(1)).Return([]models.Reading{}, nil)
		candidateSource.On("PopularBooks", ctx, mock.Anything).Return(nil, fmt.Errorf("wrapped: %w", storeErr))

		_, err := New(historySource, candidateSource, nil).Recommend(ctx, 1, models.NewRecommendationRequest())
		assert.ErrorIs(t, err, storeErr)
	})
}

func TestRecommender_WithColdStartThresholds(t *testing.T) {
	ctx := context.Background()
	historySource := new(MockHistorySource)
	candidateSource := new(MockCandidateSource)

	historySource.On("ReadingHistory", ctx, int64(3)).Return(nil, nil)
	candidateSource.On("PopularBooks", ctx, models.PopularFilter{
		MinRating:       4.5,
		MinRatingsCount: 100,
		Limit:           10,
	}).Return([]models.Book{}, nil)

	rec := New(historySource, candidateSource, nil).WithColdStart(4.5, 0)

	result, err := rec.Recommend(ctx, 3, models.NewRecommendationRequest())
	require.NoError(t, err)
	assert.Equal(t, PathColdStart, result.Path)
	assert.Empty(t, result.Books)
	candidateSource.AssertExpectations(t)
}

package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/temcen/myndreader/pkg/models"
)

type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

func TestScorer_GenreAndRating(t *testing.T) {
	scorer := NewScorer(fixedRandom(0))
	profile := &TasteProfile{
		Genres:    map[string]float64{"Fantasy": 3.0},
		AvgRating: 4.0,
	}
	book := models.Book{Genres: []string{"Fantasy"}, AverageRating: floatPtr(4.0)}

	score, reasons := scorer.Score(book, profile, WeightsFor(models.Balanced))

	assert.InDelta(t, 0.9, score, 1e-9)
	assert.Equal(t, []string{"Matches your favorite genre: Fantasy", "Highly rated book"}, reasons)
}

func TestScorer_ReasonOrder(t *testing.T) {
	scorer := NewScorer(fixedRandom(0))
	profile := &TasteProfile{
		Genres:    map[string]float64{"Fantasy": 1.0, "Horror": 1.0},
		Authors:   map[string]float64{"Neil Gaiman": 2.0},
		AvgRating: 3.0,
	}
	book := models.Book{
		Genres:        []string{"Horror", "Poetry", "Fantasy"},
		Authors:       []string{"Neil Gaiman"},
		AverageRating: floatPtr(4.5),
	}

	_, reasons := scorer.Score(book, profile, WeightsFor(models.CompletelyNew))

	assert.Equal(t, []string{
		"Matches your favorite genre: Horror",
		"Matches your favorite genre: Fantasy",
		"By author you've enjoyed: Neil Gaiman",
		"Highly rated book",
		"Explores new genres: Poetry",
	}, reasons)
}

func TestScorer_Terms(t *testing.T) {
	scorer := NewScorer(fixedRandom(0))
	profile := &TasteProfile{
		Genres:       map[string]float64{"Fantasy": 3.0, "Mystery": 1.0},
		Authors:      map[string]float64{"A": 1.0, "B": 3.0},
		AvgRating:    3.0,
		AvgPageCount: floatPtr(200),
	}
	weights := ComfortWeights{
		GenreSimilarity:     1,
		AuthorSimilarity:    1,
		RatingSimilarity:    1,
		PageCountSimilarity: 1,
		NoveltyPenalty:      1,
	}

	tests := []struct {
		name     string
		book     models.Book
		expected float64
	}{
		{"genre share", models.Book{Genres: []string{"Fantasy"}}, 0.75},
		{"author share", models.Book{Authors: []string{"B"}}, 0.75},
		{"rating distance", models.Book{AverageRating: floatPtr(4.0)}, 0.8},
		{"page distance", models.Book{PageCount: intPtr(400)}, 0.5},
		{"novelty half new", models.Book{Genres: []string{"Mystery", "Romance"}}, 0.25 + 0.5},
		{"nothing known", models.Book{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := scorer.Score(tt.book, profile, weights)
			assert.InDelta(t, tt.expected, score, 1e-9)
		})
	}
}

func TestScorer_MissingDataSkipsTerms(t *testing.T) {
	scorer := NewScorer(fixedRandom(0))
	profile := &TasteProfile{AvgRating: 4.0}

	score, reasons := scorer.Score(models.Book{Genres: []string{"Fantasy"}}, profile, WeightsFor(models.CompletelyNew))

	// No profile genres: neither the genre nor the novelty term fires.
	assert.Equal(t, 0.0, score)
	assert.Empty(t, reasons)
}

func TestScorer_NeverNegative(t *testing.T) {
	scorer := NewScorer(fixedRandom(0))
	profile := &TasteProfile{Genres: map[string]float64{"Fantasy": 1.0}, AvgRating: 3.0}
	weights := ComfortWeights{NoveltyPenalty: -5}

	score, reasons := scorer.Score(models.Book{Genres: []string{"Western"}}, profile, weights)

	assert.Equal(t, 0.0, score)
	assert.Equal(t, []string{"Explores new genres: Western"}, reasons)
}

func TestScorer_KnownGenresGetNoNoveltyReason(t *testing.T) {
	scorer := NewScorer(fixedRandom(0))
	profile := &TasteProfile{Genres: map[string]float64{"Fantasy": 1.0}, AvgRating: 3.0}

	_, reasons := scorer.Score(models.Book{Genres: []string{"Fantasy"}}, profile, WeightsFor(models.CompletelyNew))

	assert.Equal(t, []string{"Matches your favorite genre: Fantasy"}, reasons)
}

func TestScorer_Randomness(t *testing.T) {
	profile := &TasteProfile{AvgRating: 3.0}
	weights := ComfortWeights{Randomness: 0.5}

	score, reasons := NewScorer(fixedRandom(0.5)).Score(models.Book{}, profile, weights)
	assert.InDelta(t, 0.25, score, 1e-9)
	assert.Empty(t, reasons)

	a, _ := NewScorer(NewRandomSource(42)).Score(models.Book{}, profile, weights)
	b, _ := NewSeededScorer(42).Score(models.Book{}, profile, weights)
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 0.0)
	assert.Less(t, a, 0.5)
}

package recommender

import (
	"fmt"

	"github.com/temcen/myndreader/pkg/models"
)

// ComfortWeights are the coefficients applied by the Scorer.
// NoveltyPenalty turns into a bonus when negative.
type ComfortWeights struct {
	GenreSimilarity     float64 `json:"genre_similarity"`
	AuthorSimilarity    float64 `json:"author_similarity"`
	RatingSimilarity    float64 `json:"rating_similarity"`
	PageCountSimilarity float64 `json:"page_count_similarity"`
	NoveltyPenalty      float64 `json:"novelty_penalty"`
	Randomness          float64 `json:"randomness"`
}

// Every level must have weights and an explanation; a gap fails at startup.
func init() {
	for _, level := range models.ComfortLevels() {
		WeightsFor(level)
		Explain(level, 0)
	}
}

// WeightsFor returns the fixed weight vector for a comfort level. Levels outside
// the enumeration are a programming error and panic.
func WeightsFor(level models.ComfortLevel) ComfortWeights {
	switch level {
	case models.SameOld:
		return ComfortWeights{0.9, 0.8, 0.7, 0.6, 0.9, 0.1}
	case models.ComfortZone:
		return ComfortWeights{0.7, 0.6, 0.5, 0.4, 0.6, 0.2}
	case models.Balanced:
		return ComfortWeights{0.5, 0.4, 0.4, 0.3, 0.3, 0.3}
	case models.Adventurous:
		return ComfortWeights{0.3, 0.2, 0.3, 0.2, 0.1, 0.5}
	case models.CompletelyNew:
		return ComfortWeights{0.1, 0.1, 0.2, 0.1, -0.3, 0.7}
	}
	panic(fmt.Sprintf("recommender: no weights for comfort level %s", level))
}

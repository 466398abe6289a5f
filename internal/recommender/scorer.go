package recommender

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/temcen/myndreader/pkg/models"
)

// RandomSource yields uniform values in [0, 1).
type RandomSource interface {
	Float64() float64
}

// lockedSource makes a *rand.Rand safe to share between concurrent requests.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// NewRandomSource returns a goroutine-safe source. A zero seed means the
// current time is used.
func NewRandomSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedSource{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // not security sensitive
}

// Scorer rates one candidate book against a taste profile.
type Scorer struct {
	random RandomSource
}

// NewScorer creates a Scorer drawing its randomness term from random. A nil
// source falls back to a time-seeded one.
func NewScorer(random RandomSource) *Scorer {
	if random == nil {
		random = NewRandomSource(0)
	}
	return &Scorer{random: random}
}

// NewSeededScorer returns a scorer whose randomness term repeats for a given
// seed. Seed 0 means time seeded.
func NewSeededScorer(seed int64) *Scorer {
	return NewScorer(NewRandomSource(seed))
}

// Score returns the non-negative score of book and the reasons that fired, in
// the order they fired. Terms whose inputs are missing are skipped.
func (s *Scorer) Score(book models.Book, profile *TasteProfile, weights ComfortWeights) (float64, []string) {
	score := 0.0
	reasons := []string{}

	if profile == nil {
		profile = &TasteProfile{}
	}

	// Genre affinity
	if len(book.Genres) > 0 && len(profile.Genres) > 0 {
		total := sumWeights(profile.Genres)
		matches := 0.0
		for _, genre := range book.Genres {
			if weight, ok := profile.Genres[genre]; ok {
				matches += weight / total
				reasons = append(reasons, "Matches your favorite genre: "+genre)
			}
		}
		score += matches * weights.GenreSimilarity
	}

	// Author affinity
	if len(book.Authors) > 0 && len(profile.Authors) > 0 {
		total := sumWeights(profile.Authors)
		matches := 0.0
		for _, author := range book.Authors {
			if weight, ok := profile.Authors[author]; ok {
				matches += weight / total
				reasons = append(reasons, "By author you've enjoyed: "+author)
			}
		}
		score += matches * weights.AuthorSimilarity
	}

	// Rating closeness. An average of zero means the book has not been rated.
	if book.AverageRating != nil && *book.AverageRating > 0 && profile.AvgRating > 0 {
		diff := math.Abs(*book.AverageRating - profile.AvgRating)
		score += (1 - diff/5) * weights.RatingSimilarity
		if *book.AverageRating >= 4.0 {
			reasons = append(reasons, "Highly rated book")
		}
	}

	// Length closeness
	if book.PageCount != nil && *book.PageCount > 0 && profile.AvgPageCount != nil && *profile.AvgPageCount > 0 {
		pages := float64(*book.PageCount)
		diff := math.Abs(pages - *profile.AvgPageCount)
		score += (1 - diff/math.Max(pages, *profile.AvgPageCount)) * weights.PageCountSimilarity
	}

	// Novelty: penalty or bonus depending on the sign of the coefficient
	if len(book.Genres) > 0 && len(profile.Genres) > 0 {
		var newGenres []string
		for _, genre := range book.Genres {
			if _, ok := profile.Genres[genre]; !ok {
				newGenres = append(newGenres, genre)
			}
		}
		if len(newGenres) > 0 {
			score += weights.NoveltyPenalty * float64(len(newGenres)) / float64(len(book.Genres))
			if weights.NoveltyPenalty < 0 {
				reasons = append(reasons, fmt.Sprintf("Explores new genres: %s", strings.Join(newGenres, ", ")))
			}
		}
	}

	score += s.random.Float64() * weights.Randomness

	return math.Max(0, score), reasons
}

func sumWeights(weights map[string]float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	return total
}

package recommender

import (
	"gonum.org/v1/gonum/stat"

	"github.com/temcen/myndreader/pkg/models"
)

const defaultProfileRating = 3.0

// TasteProfile aggregates what a user has been reading. It is rebuilt for every
// request and never stored.
type TasteProfile struct {
	Genres       map[string]float64
	Authors      map[string]float64
	AvgRating    float64
	AvgPageCount *float64
	Languages    map[string]int
	TotalBooks   int
}

// ExtractProfile builds a TasteProfile from reading/completed readings. It
// returns nil when there is nothing to learn from.
func ExtractProfile(readings []models.Reading) *TasteProfile {
	if len(readings) == 0 {
		return nil
	}

	profile := &TasteProfile{
		Genres:     make(map[string]float64),
		Authors:    make(map[string]float64),
		AvgRating:  defaultProfileRating,
		Languages:  make(map[string]int),
		TotalBooks: len(readings),
	}

	var ratings, pageCounts []float64
	for _, reading := range readings {
		book := reading.Book
		weight := readingWeight(reading.Rating)

		for _, genre := range book.Genres {
			profile.Genres[genre] += weight
		}
		for _, author := range book.Authors {
			profile.Authors[author] += weight
		}

		if reading.Rating != nil && *reading.Rating > 0 {
			ratings = append(ratings, *reading.Rating)
		}
		if book.PageCount != nil && *book.PageCount > 0 {
			pageCounts = append(pageCounts, float64(*book.PageCount))
		}
		if book.Language != nil && *book.Language != "" {
			profile.Languages[*book.Language]++
		}
	}

	if len(ratings) > 0 {
		profile.AvgRating = stat.Mean(ratings, nil)
	}
	if len(pageCounts) > 0 {
		avg := stat.Mean(pageCounts, nil)
		profile.AvgPageCount = &avg
	}

	return profile
}

// readingWeight favours books the user loved and discounts ones they disliked.
func readingWeight(rating *float64) float64 {
	switch {
	case rating == nil || *rating == 0:
		return 1.0
	case *rating >= 4.0:
		return 2.0
	case *rating <= 2.0:
		return 0.5
	default:
		return 1.0
	}
}

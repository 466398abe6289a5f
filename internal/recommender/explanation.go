package recommender

import (
	"fmt"

	"github.com/temcen/myndreader/pkg/models"
)

// Explain summarises a result set for the given comfort level. similarity is
// the mean score of the returned books and is rendered as a percentage.
func Explain(level models.ComfortLevel, similarity float64) string {
	pct := fmt.Sprintf("%.1f%%", similarity*100)

	switch level {
	case models.SameOld:
		return fmt.Sprintf("These recommendations are very similar to your previous reads (similarity: %s). Perfect for when you want more of what you love!", pct)
	case models.ComfortZone:
		return fmt.Sprintf("These books stay close to your preferences (similarity: %s) while introducing some gentle variety.", pct)
	case models.Balanced:
		return fmt.Sprintf("A balanced mix of familiar and new (similarity: %s). These books match some of your preferences while encouraging exploration.", pct)
	case models.Adventurous:
		return fmt.Sprintf("These recommendations venture into new territory (similarity: %s) while still connecting to your interests.", pct)
	case models.CompletelyNew:
		return fmt.Sprintf("Time to explore something completely different! These books (similarity: %s) will expand your literary horizons.", pct)
	}
	panic(fmt.Sprintf("recommender: no explanation for comfort level %s", level))
}

// AverageScore is the mean score of books, or 0 when there are none.
func AverageScore(books []models.ScoredBook) float64 {
	if len(books) == 0 {
		return 0
	}
	total := 0.0
	for _, b := range books {
		total += b.Score
	}
	return total / float64(len(books))
}

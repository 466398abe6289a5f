package models

import "fmt"

// ComfortLevel selects a point on the familiarity/novelty spectrum. The zero
// value means unset; the levels are ordered from most familiar to most novel.
type ComfortLevel uint8

const (
	ComfortLevelUnset ComfortLevel = iota
	SameOld
	ComfortZone
	Balanced
	Adventurous
	CompletelyNew

	numComfortLevels
)

var comfortLevelNames = [numComfortLevels]string{
	SameOld:       "same_old",
	ComfortZone:   "comfort_zone",
	Balanced:      "balanced",
	Adventurous:   "adventurous",
	CompletelyNew: "completely_new",
}

func init() {
	for l := SameOld; l < numComfortLevels; l++ {
		if comfortLevelNames[l] == "" {
			panic(fmt.Sprintf("models: comfort level %d has no name", l))
		}
	}
}

// ComfortLevels returns every level ordered from most familiar to most novel.
func ComfortLevels() []ComfortLevel {
	levels := make([]ComfortLevel, 0, numComfortLevels-1)
	for l := SameOld; l < numComfortLevels; l++ {
		levels = append(levels, l)
	}
	return levels
}

// ParseComfortLevel converts user input into a ComfortLevel. An empty string
// selects Balanced.
func ParseComfortLevel(s string) (ComfortLevel, error) {
	if s == "" {
		return Balanced, nil
	}
	for l := SameOld; l < numComfortLevels; l++ {
		if comfortLevelNames[l] == s {
			return l, nil
		}
	}
	return ComfortLevelUnset, fmt.Errorf("unknown comfort level %q", s)
}

func (l ComfortLevel) Valid() bool {
	return l > ComfortLevelUnset && l < numComfortLevels
}

func (l ComfortLevel) String() string {
	switch {
	case l.Valid():
		return comfortLevelNames[l]
	case l == ComfortLevelUnset:
		return "unset"
	}
	return fmt.Sprintf("ComfortLevel(%d)", uint8(l))
}

func (l ComfortLevel) MarshalText() ([]byte, error) {
	if l == ComfortLevelUnset {
		return []byte{}, nil
	}
	if !l.Valid() {
		return nil, fmt.Errorf("cannot marshal comfort level %s", l)
	}
	return []byte(comfortLevelNames[l]), nil
}

func (l *ComfortLevel) UnmarshalText(text []byte) error {
	level, err := ParseComfortLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

const (
	DefaultRecommendationLimit = 10
	MaxRecommendationLimit     = 50
)

type RecommendationRequest struct {
	ComfortLevel    ComfortLevel `json:"comfort_level"`
	Limit           int          `json:"limit" validate:"min=1,max=50"`
	ExcludeRead     bool         `json:"exclude_read"`
	MinRating       *float64     `json:"min_rating,omitempty" validate:"omitempty,min=0,max=5"`
	MaxPageCount    *int         `json:"max_page_count,omitempty" validate:"omitempty,min=1"`
	PreferredGenres []string     `json:"preferred_genres,omitempty"`
	UsePreferences  bool         `json:"use_preferences,omitempty"`
}

// NewRecommendationRequest returns a request with the documented defaults.
func NewRecommendationRequest() RecommendationRequest {
	return RecommendationRequest{
		ComfortLevel: Balanced,
		Limit:        DefaultRecommendationLimit,
		ExcludeRead:  true,
	}
}

// ScoredBook is a candidate with its score and the reasons behind it.
type ScoredBook struct {
	Book    Book     `json:"book"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

type RecommendationResponse struct {
	Books           []Book       `json:"books"`
	Explanation     string       `json:"explanation"`
	ComfortLevel    ComfortLevel `json:"comfort_level"`
	SimilarityScore float64      `json:"similarity_score"`
}

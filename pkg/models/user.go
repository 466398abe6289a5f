package models

import (
	"time"
)

type User struct {
	ID             int64           `json:"id" db:"id"`
	Email          string          `json:"email" db:"email"`
	Username       string          `json:"username" db:"username"`
	HashedPassword string          `json:"-" db:"hashed_password"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	Preferences    *UserPreference `json:"preferences,omitempty"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ReadingStatus is where a user is with a book.
type ReadingStatus string

const (
	StatusReading    ReadingStatus = "reading"
	StatusCompleted  ReadingStatus = "completed"
	StatusWantToRead ReadingStatus = "want_to_read"
	StatusAbandoned  ReadingStatus = "abandoned"
)

func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusReading, StatusCompleted, StatusWantToRead, StatusAbandoned:
		return true
	}
	return false
}

// HistoryStatuses feed the taste profile.
var HistoryStatuses = []ReadingStatus{StatusCompleted, StatusReading}

// ExcludedStatuses mark books that are no longer recommended.
var ExcludedStatuses = []ReadingStatus{StatusCompleted, StatusReading, StatusAbandoned}

type Reading struct {
	ID         int64         `json:"id" db:"id"`
	UserID     int64         `json:"user_id" db:"user_id"`
	BookID     int64         `json:"book_id" db:"book_id"`
	Rating     *float64      `json:"rating,omitempty" db:"rating"`
	Status     ReadingStatus `json:"status" db:"status"`
	StartDate  *time.Time    `json:"start_date,omitempty" db:"start_date"`
	FinishDate *time.Time    `json:"finish_date,omitempty" db:"finish_date"`
	Review     *string       `json:"review,omitempty" db:"review"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	Book       Book          `json:"book"`
}

type ReadingRequest struct {
	BookID     int64         `json:"book_id" validate:"required,min=1"`
	Rating     *float64      `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Status     ReadingStatus `json:"status" validate:"omitempty,oneof=reading completed want_to_read abandoned"`
	StartDate  *time.Time    `json:"start_date,omitempty"`
	FinishDate *time.Time    `json:"finish_date,omitempty"`
	Review     *string       `json:"review,omitempty"`
}

// ReadingUpdateRequest is a partial ReadingRequest: unset fields keep
// their stored values.
type ReadingUpdateRequest struct {
	BookID     *int64        `json:"book_id,omitempty" validate:"omitempty,min=1"`
	Rating     *float64      `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Status     ReadingStatus `json:"status,omitempty" validate:"omitempty,oneof=reading completed want_to_read abandoned"`
	StartDate  *time.Time    `json:"start_date,omitempty"`
	FinishDate *time.Time    `json:"finish_date,omitempty"`
	Review     *string       `json:"review,omitempty"`
}

// ReadingRequest converts the update; a zero BookID means unchanged.
func (r ReadingUpdateRequest) ReadingRequest() ReadingRequest {
	req := ReadingRequest{
		Rating:     r.Rating,
		Status:     r.Status,
		StartDate:  r.StartDate,
		FinishDate: r.FinishDate,
		Review:     r.Review,
	}
	if r.BookID != nil {
		req.BookID = *r.BookID
	}
	return req
}

// UserPreference holds a user's standing filters.
type UserPreference struct {
	ID                 int64    `json:"id"`
	UserID             int64    `json:"user_id"`
	PreferredGenres    []string `json:"preferred_genres"`
	PreferredAuthors   []string `json:"preferred_authors"`
	MinRating          *float64 `json:"min_rating"`
	MaxPageCount       *int     `json:"max_page_count"`
	MinPageCount       *int     `json:"min_page_count"`
	PreferredLanguages []string `json:"preferred_languages"`
}

type PreferenceRequest struct {
	PreferredGenres    []string `json:"preferred_genres"`
	PreferredAuthors   []string `json:"preferred_authors"`
	MinRating          *float64 `json:"min_rating" validate:"omitempty,min=0,max=5"`
	MaxPageCount       *int     `json:"max_page_count" validate:"omitempty,min=1"`
	MinPageCount       *int     `json:"min_page_count" validate:"omitempty,min=1"`
	PreferredLanguages []string `json:"preferred_languages"`
}

// DefaultPreference is returned for users that never saved preferences.
func DefaultPreference(userID int64) *UserPreference {
	minRating := 3.0
	return &UserPreference{
		UserID:             userID,
		PreferredGenres:    []string{},
		PreferredAuthors:   []string{},
		MinRating:          &minRating,
		PreferredLanguages: []string{},
	}
}

package services

import (
	"context"

	"github.com/temcen/myndreader/internal/messaging"
	"github.com/temcen/myndreader/internal/recommender"
	"github.com/temcen/myndreader/pkg/models"
)

// CatalogStore is the book, author and genre storage used by CatalogService.
type CatalogStore interface {
	ListBooks(ctx context.Context, query models.BookQuery) ([]models.Book, error)
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	BookExistsByISBN(ctx context.Context, isbn string) (bool, error)
	CreateBook(ctx context.Context, req models.CreateBookRequest) (int64, error)
	ListAuthors(ctx context.Context, search string, skip, limit int) ([]models.Author, error)
	CreateAuthor(ctx context.Context, name string) (*models.Author, error)
	ListGenres(ctx context.Context, skip, limit int) ([]models.Genre, error)
	CreateGenre(ctx context.Context, name string) (*models.Genre, error)
}

// UserStore is the user, reading and preference storage used by UserService.
type UserStore interface {
	CreateUser(ctx context.Context, email, username, hashedPassword string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	UserExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	ListReadings(ctx context.Context, userID int64, status string, skip, limit int) ([]models.Reading, error)
	GetReading(ctx context.Context, userID, readingID int64) (*models.Reading, error)
	ReadingExists(ctx context.Context, userID, bookID int64) (bool, error)
	CreateReading(ctx context.Context, userID int64, req models.ReadingRequest) (int64, error)
	UpdateReading(ctx context.Context, userID, readingID int64, req models.ReadingRequest) error
	GetPreference(ctx context.Context, userID int64) (*models.UserPreference, error)
	UpsertPreference(ctx context.Context, userID int64, req models.PreferenceRequest) (*models.UserPreference, error)
}

// RecommendationStore feeds the recommender and the similar-books lookup.
type RecommendationStore interface {
	recommender.HistorySource
	recommender.CandidateSource
	UserExists(ctx context.Context, id int64) (bool, error)
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	SimilarBooks(ctx context.Context, userID int64, seed models.Book, limit int) ([]models.Book, error)
	GetPreference(ctx context.Context, userID int64) (*models.UserPreference, error)
}

// EventPublisher receives reading change events.
type EventPublisher interface {
	PublishReadingEvent(ctx context.Context, event messaging.ReadingEvent) error
}

// PreferenceCache caches user preferences between requests.
type PreferenceCache interface {
	Get(ctx context.Context, userID int64) *models.UserPreference
	Set(ctx context.Context, pref *models.UserPreference)
	Invalidate(ctx context.Context, userID int64)
}

// RecommendationServiceInterface is what the recommendation handler needs.
type RecommendationServiceInterface interface {
	Recommend(ctx context.Context, userID int64, req models.RecommendationRequest) (*models.RecommendationResponse, error)
	RecommendDetailed(ctx context.Context, userID int64, req models.RecommendationRequest) ([]models.ScoredBook, error)
	CompareComfortLevels(ctx context.Context, userID int64, limit int, excludeRead bool) ([]models.RecommendationResponse, error)
	SimilarBooks(ctx context.Context, userID, bookID int64, limit int) ([]models.Book, error)
}

// CatalogServiceInterface is what the book handler needs.
type CatalogServiceInterface interface {
	ListBooks(ctx context.Context, query models.BookQuery) ([]models.Book, error)
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	CreateBook(ctx context.Context, req models.CreateBookRequest) (*models.Book, error)
	ListAuthors(ctx context.Context, search string, skip, limit int) ([]models.Author, error)
	CreateAuthor(ctx context.Context, name string) (*models.Author, error)
	ListGenres(ctx context.Context, skip, limit int) ([]models.Genre, error)
	CreateGenre(ctx context.Context, name string) (*models.Genre, error)
}

// UserServiceInterface is what the user handler needs.
type UserServiceInterface interface {
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListReadings(ctx context.Context, userID int64, status string, skip, limit int) ([]models.Reading, error)
	AddReading(ctx context.Context, userID int64, req models.ReadingRequest) (*models.Reading, error)
	UpdateReading(ctx context.Context, userID, readingID int64, req models.ReadingRequest) (*models.Reading, error)
	GetPreferences(ctx context.Context, userID int64) (*models.UserPreference, error)
	SavePreferences(ctx context.Context, userID int64, req models.PreferenceRequest) (*models.UserPreference, error)
}

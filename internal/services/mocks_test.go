package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/temcen/myndreader/internal/messaging"
	"github.com/temcen/myndreader/pkg/models"
)

// MockStore implements CatalogStore, UserStore and RecommendationStore.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ReadingHistory(ctx context.Context, userID int64) ([]models.Reading, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reading), args.Error(1)
}

func (m *MockStore) Candidates(ctx context.Context, filter models.CandidateFilter) ([]models.Book, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockStore) PopularBooks(ctx context.Context, filter models.PopularFilter) ([]models.Book, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockStore) UserExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockStore) SimilarBooks(ctx context.Context, userID int64, seed models.Book, limit int) ([]models.Book, error) {
	args := m.Called(ctx, userID, seed, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockStore) GetPreference(ctx context.Context, userID int64) (*models.UserPreference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPreference), args.Error(1)
}

func (m *MockStore) UpsertPreference(ctx context.Context, userID int64, req models.PreferenceRequest) (*models.UserPreference, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPreference), args.Error(1)
}

func (m *MockStore) ListBooks(ctx context.Context, query models.BookQuery) ([]models.Book, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockStore) BookExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	args := m.Called(ctx, isbn)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateBook(ctx context.Context, req models.CreateBookRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListAuthors(ctx context.Context, search string, skip, limit int) ([]models.Author, error) {
	args := m.Called(ctx, search, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Author), args.Error(1)
}

func (m *MockStore) CreateAuthor(ctx context.Context, name string) (*models.Author, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Author), args.Error(1)
}

func (m *MockStore) ListGenres(ctx context.Context, skip, limit int) ([]models.Genre, error) {
	args := m.Called(ctx, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Genre), args.Error(1)
}

func (m *MockStore) CreateGenre(ctx context.Context, name string) (*models.Genre, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Genre), args.Error(1)
}

func (m *MockStore) CreateUser(ctx context.Context, email, username, hashedPassword string) (*models.User, error) {
	args := m.Called(ctx, email, username, hashedPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) UserExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) ListReadings(ctx context.Context, userID int64, status string, skip, limit int) ([]models.Reading, error) {
	args := m.Called(ctx, userID, status, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reading), args.Error(1)
}

func (m *MockStore) GetReading(ctx context.Context, userID, readingID int64) (*models.Reading, error) {
	args := m.Called(ctx, userID, readingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reading), args.Error(1)
}

func (m *MockStore) ReadingExists(ctx context.Context, userID, bookID int64) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateReading(ctx context.Context, userID int64, req models.ReadingRequest) (int64, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) UpdateReading(ctx context.Context, userID, readingID int64, req models.ReadingRequest) error {
	args := m.Called(ctx, userID, readingID, req)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishReadingEvent(ctx context.Context, event messaging.ReadingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func strPtr(s string) *string     { return &s }

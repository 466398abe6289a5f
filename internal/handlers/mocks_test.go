package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/temcen/myndreader/pkg/models"
)

type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) Recommend(ctx context.Context, userID int64, req models.RecommendationRequest) (*models.RecommendationResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecommendationResponse), args.Error(1)
}

func (m *MockRecommendationService) RecommendDetailed(ctx context.Context, userID int64, req models.RecommendationRequest) ([]models.ScoredBook, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScoredBook), args.Error(1)
}

func (m *MockRecommendationService) CompareComfortLevels(ctx context.Context, userID int64, limit int, excludeRead bool) ([]models.RecommendationResponse, error) {
	args := m.Called(ctx, userID, limit, excludeRead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecommendationResponse), args.Error(1)
}

func (m *MockRecommendationService) SimilarBooks(ctx context.Context, userID, bookID int64, limit int) ([]models.Book, error) {
	args := m.Called(ctx, userID, bookID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListBooks(ctx context.Context, query models.BookQuery) ([]models.Book, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockCatalogService) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockCatalogService) CreateBook(ctx context.Context, req models.CreateBookRequest) (*models.Book, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockCatalogService) ListAuthors(ctx context.Context, search string, skip, limit int) ([]models.Author, error) {
	args := m.Called(ctx, search, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Author), args.Error(1)
}

func (m *MockCatalogService) CreateAuthor(ctx context.Context, name string) (*models.Author, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Author), args.Error(1)
}

func (m *MockCatalogService) ListGenres(ctx context.Context, skip, limit int) ([]models.Genre, error) {
	args := m.Called(ctx, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Genre), args.Error(1)
}

func (m *MockCatalogService) CreateGenre(ctx context.Context, name string) (*models.Genre, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Genre), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ListReadings(ctx context.Context, userID int64, status string, skip, limit int) ([]models.Reading, error) {
	args := m.Called(ctx, userID, status, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reading), args.Error(1)
}

func (m *MockUserService) AddReading(ctx context.Context, userID int64, req models.ReadingRequest) (*models.Reading, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reading), args.Error(1)
}

func (m *MockUserService) UpdateReading(ctx context.Context, userID, readingID int64, req models.ReadingRequest) (*models.Reading, error) {
	args := m.Called(ctx, userID, readingID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reading), args.Error(1)
}

func (m *MockUserService) GetPreferences(ctx context.Context, userID int64) (*models.UserPreference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPreference), args.Error(1)
}

func (m *MockUserService) SavePreferences(ctx context.Context, userID int64, req models.PreferenceRequest) (*models.UserPreference, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPreference), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Login(ctx context.Context, apiKey string) (*models.AuthResponse, error) {
	args := m.Called(ctx, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResponse), args.Error(1)
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/temcen/myndreader/internal/messaging"
	"github.com/temcen/myndreader/internal/store"
	"github.com/temcen/myndreader/pkg/models"
)

const DefaultReadingsLimit = 100

type UserService struct {
	store       UserStore
	events      EventPublisher
	preferences PreferenceCache
	logger      *logrus.Logger
	bcryptCost  int
}

// NewUserService wires the user store. events and preferences may be nil.
func NewUserService(userStore UserStore, events EventPublisher, preferences PreferenceCache, logger *logrus.Logger) *UserService {
	if preferences == nil {
		preferences = noPreferenceCache{}
	}
	return &UserService{
		store:       userStore,
		events:      events,
		preferences: preferences,
		logger:      logger,
		bcryptCost:  bcrypt.DefaultCost,
	}
}

func (s *UserService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	exists, err := s.store.UserExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: user with this email or username", ErrDuplicate)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, email, username, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: user with this email or username", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User created")
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) ListReadings(ctx context.Context, userID int64, status string, skip, limit int) ([]models.Reading, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultReadingsLimit
	}
	if skip < 0 {
		skip = 0
	}

	readings, err := s.store.ListReadings(ctx, userID, status, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	return readings, nil
}

// AddReading puts a book on the user's list. A user has at most one
// reading per book; the status defaults to want_to_read.
func (s *UserService) AddReading(ctx context.Context, userID int64, req models.ReadingRequest) (*models.Reading, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetBook(ctx, req.BookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	exists, err := s.store.ReadingExists(ctx, userID, req.BookID)
	if err != nil {
		return nil, fmt.Errorf("failed to check reading: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: reading entry for this book", ErrDuplicate)
	}

	if req.Status == "" {
		req.Status = models.StatusWantToRead
	}

	id, err := s.store.CreateReading(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create reading: %w", err)
	}

	reading, err := s.getReading(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, messaging.ReadingAdded, reading)
	return reading, nil
}

// UpdateReading changes only the fields set in req.
func (s *UserService) UpdateReading(ctx context.Context, userID, readingID int64, req models.ReadingRequest) (*models.Reading, error) {
	existing, err := s.getReading(ctx, userID, readingID)
	if err != nil {
		return nil, err
	}

	merged := models.ReadingRequest{
		BookID:     existing.BookID,
		Rating:     existing.Rating,
		Status:     existing.Status,
		StartDate:  existing.StartDate,
		FinishDate: existing.FinishDate,
		Review:     existing.Review,
	}
	if req.BookID != 0 {
		merged.BookID = req.BookID
	}
	if req.Rating != nil {
		merged.Rating = req.Rating
	}
	if req.Status != "" {
		merged.Status = req.Status
	}
	if req.StartDate != nil {
		merged.StartDate = req.StartDate
	}
	if req.FinishDate != nil {
		merged.FinishDate = req.FinishDate
	}
	if req.Review != nil {
		merged.Review = req.Review
	}

	if err := s.store.UpdateReading(ctx, userID, readingID, merged); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReadingNotFound
		}
		return nil, fmt.Errorf("failed to update reading: %w", err)
	}

	reading, err := s.getReading(ctx, userID, readingID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, messaging.ReadingUpdated, reading)
	return reading, nil
}

// GetPreferences returns the stored preferences, or the defaults for users
// that never saved any.
func (s *UserService) GetPreferences(ctx context.Context, userID int64) (*models.UserPreference, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if cached := s.preferences.Get(ctx, userID); cached != nil {
		return cached, nil
	}

	pref, err := s.store.GetPreference(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.DefaultPreference(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	s.preferences.Set(ctx, pref)
	return pref, nil
}

func (s *UserService) SavePreferences(ctx context.Context, userID int64, req models.PreferenceRequest) (*models.UserPreference, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	pref, err := s.store.UpsertPreference(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	s.preferences.Set(ctx, pref)
	return pref, nil
}

func (s *UserService) ensureUser(ctx context.Context, userID int64) error {
	exists, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) getReading(ctx context.Context, userID, readingID int64) (*models.Reading, error) {
	reading, err := s.store.GetReading(ctx, userID, readingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReadingNotFound
		}
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}
	return reading, nil
}

// publish is best effort: the reading is already stored.
func (s *UserService) publish(ctx context.Context, eventType messaging.EventType, reading *models.Reading) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishReadingEvent(ctx, messaging.NewReadingEvent(eventType, reading)); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":    reading.UserID,
			"reading_id": reading.ID,
		}).Warn("Failed to publish reading event")
	}
}

type noPreferenceCache struct{}

func (noPreferenceCache) Get(context.Context, int64) *models.UserPreference { return nil }
func (noPreferenceCache) Set(context.Context, *models.UserPreference)       {}
func (noPreferenceCache) Invalidate(context.Context, int64)                 {}

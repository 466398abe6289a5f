package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/temcen/myndreader/pkg/models"
)

// GetPreference returns the stored preference or ErrNotFound.
func (s *PostgresStore) GetPreference(ctx context.Context, userID int64) (*models.UserPreference, error) {
	var (
		pref                       models.UserPreference
		genres, authors, languages *string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, preferred_genres, preferred_authors, min_rating,
		       max_page_count, min_page_count, preferred_languages
		FROM user_preferences WHERE user_id = $1`, userID,
	).Scan(&pref.ID, &pref.UserID, &genres, &authors, &pref.MinRating,
		&pref.MaxPageCount, &pref.MinPageCount, &languages)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences for user %d: %w", userID, err)
	}

	if pref.PreferredGenres, err = decodeList(genres); err != nil {
		return nil, fmt.Errorf("bad preferred_genres for user %d: %w", userID, err)
	}
	if pref.PreferredAuthors, err = decodeList(authors); err != nil {
		return nil, fmt.Errorf("bad preferred_authors for user %d: %w", userID, err)
	}
	if pref.PreferredLanguages, err = decodeList(languages); err != nil {
		return nil, fmt.Errorf("bad preferred_languages for user %d: %w", userID, err)
	}
	return &pref, nil
}

// UpsertPreference replaces the user's preference row.
func (s *PostgresStore) UpsertPreference(ctx context.Context, userID int64, req models.PreferenceRequest) (*models.UserPreference, error) {
	genres, err := encodeList(req.PreferredGenres)
	if err != nil {
		return nil, err
	}
	authors, err := encodeList(req.PreferredAuthors)
	if err != nil {
		return nil, err
	}
	languages, err := encodeList(req.PreferredLanguages)
	if err != nil {
		return nil, err
	}

	pref := &models.UserPreference{
		UserID:             userID,
		PreferredGenres:    nonNil(req.PreferredGenres),
		PreferredAuthors:   nonNil(req.PreferredAuthors),
		MinRating:          req.MinRating,
		MaxPageCount:       req.MaxPageCount,
		MinPageCount:       req.MinPageCount,
		PreferredLanguages: nonNil(req.PreferredLanguages),
	}
	err = s.db.QueryRow(ctx, `
		INSERT INTO user_preferences (user_id, preferred_genres, preferred_authors, min_rating,
			max_page_count, min_page_count, preferred_languages)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			preferred_genres = EXCLUDED.preferred_genres,
			preferred_authors = EXCLUDED.preferred_authors,
			min_rating = EXCLUDED.min_rating,
			max_page_count = EXCLUDED.max_page_count,
			min_page_count = EXCLUDED.min_page_count,
			preferred_languages = EXCLUDED.preferred_languages
		RETURNING id`,
		userID, genres, authors, req.MinRating, req.MaxPageCount, req.MinPageCount, languages,
	).Scan(&pref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to save preferences for user %d: %w", userID, err)
	}
	return pref, nil
}

// List columns hold JSON arrays as text.
func encodeList(values []string) (string, error) {
	data, err := json.Marshal(nonNil(values))
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

func decodeList(raw *string) ([]string, error) {
	if raw == nil || *raw == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(*raw), &values); err != nil {
		return nil, err
	}
	return nonNil(values), nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

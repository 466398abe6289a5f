package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/temcen/myndreader/pkg/models"
)

func (s *PostgresStore) CreateUser(ctx context.Context, email, username, hashedPassword string) (*models.User, error) {
	user := &models.User{Email: email, Username: username, HashedPassword: hashedPassword}
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (email, username, hashed_password)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at`,
		email, username, hashedPassword,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow(ctx, `
		SELECT id, email, username, hashed_password, is_active, created_at
		FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Email, &user.Username, &user.HashedPassword, &user.IsActive, &user.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return &user, nil
}

func (s *PostgresStore) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists); err != nil {
		return false, fmt.Errorf("user lookup failed: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) UserExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR username = $2)", email, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user lookup failed: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListAuthors(ctx context.Context, search string, skip, limit int) ([]models.Author, error) {
	q := &queryBuilder{}
	if search != "" {
		q.add("name ILIKE ?", "%"+search+"%")
	}
	sql := "SELECT id, name FROM authors" + q.clause() + " ORDER BY id OFFSET " + q.next(skip) + " LIMIT " + q.next(limit)

	rows, err := s.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("list authors query failed: %w", err)
	}
	defer rows.Close()

	authors := []models.Author{}
	for rows.Next() {
		var a models.Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// CreateAuthor rejects exact-name duplicates with ErrDuplicate.
func (s *PostgresStore) CreateAuthor(ctx context.Context, name string) (*models.Author, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM authors WHERE name = $1)", name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("author lookup failed: %w", err)
	}
	if exists {
		return nil, ErrDuplicate
	}

	author := &models.Author{Name: name}
	if err := s.db.QueryRow(ctx, "INSERT INTO authors (name) VALUES ($1) RETURNING id", name).Scan(&author.ID); err != nil {
		return nil, fmt.Errorf("failed to insert author: %w", err)
	}
	return author, nil
}

func (s *PostgresStore) ListGenres(ctx context.Context, skip, limit int) ([]models.Genre, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name FROM genres ORDER BY id OFFSET $1 LIMIT $2", skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list genres query failed: %w", err)
	}
	defer rows.Close()

	genres := []models.Genre{}
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

func (s *PostgresStore) CreateGenre(ctx context.Context, name string) (*models.Genre, error) {
	genre := &models.Genre{Name: name}
	err := s.db.QueryRow(ctx, "INSERT INTO genres (name) VALUES ($1) RETURNING id", name).Scan(&genre.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert genre: %w", err)
	}
	return genre, nil
}

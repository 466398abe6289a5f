package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/pkg/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Querier is the subset of pgxpool.Pool used by the store. pgxmock pools
// satisfy it too.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore owns books, users, readings and preferences.
type PostgresStore struct {
	db     Querier
	logger *logrus.Logger
}

func NewPostgresStore(db Querier, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id              BIGSERIAL PRIMARY KEY,
	email           TEXT NOT NULL UNIQUE,
	username        TEXT NOT NULL UNIQUE,
	hashed_password TEXT NOT NULL,
	is_active       BOOLEAN NOT NULL DEFAULT TRUE,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS authors (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS authors_name_idx ON authors (name);
CREATE TABLE IF NOT EXISTS genres (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS books (
	id               BIGSERIAL PRIMARY KEY,
	title            TEXT NOT NULL,
	isbn             TEXT UNIQUE,
	publication_year INTEGER,
	description      TEXT,
	page_count       INTEGER,
	average_rating   DOUBLE PRECISION,
	ratings_count    INTEGER,
	language         TEXT,
	publisher        TEXT
);
CREATE INDEX IF NOT EXISTS books_title_idx ON books (title);
CREATE TABLE IF NOT EXISTS book_authors (
	book_id   BIGINT NOT NULL REFERENCES books (id),
	author_id BIGINT NOT NULL REFERENCES authors (id),
	PRIMARY KEY (book_id, author_id)
);
CREATE TABLE IF NOT EXISTS book_genres (
	book_id  BIGINT NOT NULL REFERENCES books (id),
	genre_id BIGINT NOT NULL REFERENCES genres (id),
	PRIMARY KEY (book_id, genre_id)
);
CREATE TABLE IF NOT EXISTS readings (
	id          BIGSERIAL PRIMARY KEY,
	user_id     BIGINT NOT NULL REFERENCES users (id),
	book_id     BIGINT NOT NULL REFERENCES books (id),
	rating      DOUBLE PRECISION,
	status      TEXT NOT NULL,
	start_date  TIMESTAMPTZ,
	finish_date TIMESTAMPTZ,
	review      TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS readings_user_status_idx ON readings (user_id, status);
CREATE TABLE IF NOT EXISTS user_preferences (
	id                  BIGSERIAL PRIMARY KEY,
	user_id             BIGINT NOT NULL UNIQUE REFERENCES users (id),
	preferred_genres    TEXT,
	preferred_authors   TEXT,
	min_rating          DOUBLE PRECISION DEFAULT 3.0,
	max_page_count      INTEGER,
	min_page_count      INTEGER,
	preferred_languages TEXT
);`

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.logger.Info("Database schema applied")
	return nil
}

func statusStrings(statuses []models.ReadingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

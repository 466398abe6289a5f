package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/temcen/myndreader/pkg/models"
)

const bookColumns = `
	b.id, b.title, b.isbn, b.publication_year, b.description, b.page_count,
	b.average_rating, b.ratings_count, b.language, b.publisher,
	ARRAY(SELECT a.name FROM authors a JOIN book_authors ba ON ba.author_id = a.id
	      WHERE ba.book_id = b.id ORDER BY a.id) AS authors,
	ARRAY(SELECT g.name FROM genres g JOIN book_genres bg ON bg.genre_id = g.id
	      WHERE bg.book_id = b.id ORDER BY g.id) AS genres`

func scanBook(row pgx.Row, extra ...interface{}) (models.Book, error) {
	var book models.Book
	dest := append(extra,
		&book.ID, &book.Title, &book.ISBN, &book.PublicationYear, &book.Description, &book.PageCount,
		&book.AverageRating, &book.RatingsCount, &book.Language, &book.Publisher,
		&book.Authors, &book.Genres,
	)
	if err := row.Scan(dest...); err != nil {
		return models.Book{}, err
	}
	return book, nil
}

func collectBooks(rows pgx.Rows) ([]models.Book, error) {
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// queryBuilder accumulates WHERE clauses with numbered placeholders.
type queryBuilder struct {
	where []string
	args  []interface{}
}

// add appends clause, binding each "?" in turn to the next argument.
func (q *queryBuilder) add(clause string, args ...interface{}) {
	for _, arg := range args {
		clause = strings.Replace(clause, "?", q.next(arg), 1)
	}
	q.where = append(q.where, clause)
}

func (q *queryBuilder) clause() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

func (q *queryBuilder) next(arg interface{}) string {
	q.args = append(q.args, arg)
	return fmt.Sprintf("$%d", len(q.args))
}

// isSet reports whether an optional bound filters anything. Zero counts as
// absent: a rating floor of 0 must not drop unrated books.
func isSet[T int | float64](v *T) bool {
	return v != nil && *v > 0
}

const notReadBy = `b.id NOT IN (SELECT r.book_id FROM readings r
	WHERE r.user_id = ? AND r.status = ANY(?))`

const genreMatch = `EXISTS (SELECT 1 FROM book_genres bg JOIN genres g ON g.id = bg.genre_id
	WHERE bg.book_id = b.id AND g.name = ANY(?))`

// Candidates returns books matching filter in id order.
func (s *PostgresStore) Candidates(ctx context.Context, filter models.CandidateFilter) ([]models.Book, error) {
	q := &queryBuilder{}

	if filter.ExcludeRead {
		q.add(notReadBy, filter.UserID, statusStrings(models.ExcludedStatuses))
	}
	if isSet(filter.MinRating) {
		q.add("b.average_rating >= ?", *filter.MinRating)
	}
	if isSet(filter.MaxPageCount) {
		q.add("b.page_count <= ?", *filter.MaxPageCount)
	}
	if len(filter.Genres) > 0 {
		q.add(genreMatch, filter.Genres)
	}

	sql := "SELECT " + bookColumns + " FROM books b" + q.clause() + " ORDER BY b.id"

	rows, err := s.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("candidate query failed: %w", err)
	}
	return collectBooks(rows)
}

// PopularBooks returns well-rated, widely-rated books, best rated first.
func (s *PostgresStore) PopularBooks(ctx context.Context, filter models.PopularFilter) ([]models.Book, error) {
	q := &queryBuilder{}
	q.add("b.average_rating >= ?", filter.MinRating)
	q.add("b.ratings_count >= ?", filter.MinRatingsCount)
	if len(filter.Genres) > 0 {
		q.add(genreMatch, filter.Genres)
	}

	sql := "SELECT " + bookColumns + " FROM books b" + q.clause() +
		" ORDER BY b.average_rating DESC, b.id LIMIT " + q.next(filter.Limit)

	rows, err := s.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("popular books query failed: %w", err)
	}
	return collectBooks(rows)
}

// ListBooks serves the catalogue listing.
func (s *PostgresStore) ListBooks(ctx context.Context, query models.BookQuery) ([]models.Book, error) {
	q := &queryBuilder{}

	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		q.add("(b.title ILIKE ? OR b.description ILIKE ?)", pattern, pattern)
	}
	if query.Genre != "" {
		q.add(`EXISTS (SELECT 1 FROM book_genres bg JOIN genres g ON g.id = bg.genre_id
			WHERE bg.book_id = b.id AND g.name ILIKE ?)`, "%"+query.Genre+"%")
	}
	if query.Author != "" {
		q.add(`EXISTS (SELECT 1 FROM book_authors ba JOIN authors a ON a.id = ba.author_id
			WHERE ba.book_id = b.id AND a.name ILIKE ?)`, "%"+query.Author+"%")
	}
	if isSet(query.MinRating) {
		q.add("b.average_rating >= ?", *query.MinRating)
	}
	if isSet(query.MaxPageCount) {
		q.add("b.page_count <= ?", *query.MaxPageCount)
	}

	sql := "SELECT " + bookColumns + " FROM books b" + q.clause() + " ORDER BY b.id"
	sql += " OFFSET " + q.next(query.Skip) + " LIMIT " + q.next(query.Limit)

	rows, err := s.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("list books query failed: %w", err)
	}
	return collectBooks(rows)
}

func (s *PostgresStore) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	row := s.db.QueryRow(ctx, "SELECT "+bookColumns+" FROM books b WHERE b.id = $1", id)
	book, err := scanBook(row)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book %d: %w", id, err)
	}
	return &book, nil
}

func (s *PostgresStore) BookExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)", isbn).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("isbn lookup failed: %w", err)
	}
	return exists, nil
}

// CreateBook inserts the book and links the given authors and genres. Unknown
// author or genre ids are ignored.
func (s *PostgresStore) CreateBook(ctx context.Context, req models.CreateBookRequest) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO books (title, isbn, publication_year, description, page_count,
			average_rating, ratings_count, language, publisher)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		req.Title, req.ISBN, req.PublicationYear, req.Description, req.PageCount,
		req.AverageRating, req.RatingsCount, req.Language, req.Publisher,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("failed to insert book: %w", err)
	}

	if len(req.AuthorIDs) > 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO book_authors (book_id, author_id)
			SELECT $1, a.id FROM authors a WHERE a.id = ANY($2)`, id, req.AuthorIDs); err != nil {
			return 0, fmt.Errorf("failed to link authors: %w", err)
		}
	}
	if len(req.GenreIDs) > 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO book_genres (book_id, genre_id)
			SELECT $1, g.id FROM genres g WHERE g.id = ANY($2)`, id, req.GenreIDs); err != nil {
			return 0, fmt.Errorf("failed to link genres: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit book: %w", err)
	}
	return id, nil
}

// SimilarBooks finds books sharing a genre (when the seed has any) and an
// author (when the seed has any) with seed, skipping the seed and anything
// the user already read or abandoned.
func (s *PostgresStore) SimilarBooks(ctx context.Context, userID int64, seed models.Book, limit int) ([]models.Book, error) {
	q := &queryBuilder{}
	q.add("b.id <> ?", seed.ID)
	if len(seed.Genres) > 0 {
		q.add(genreMatch, seed.Genres)
	}
	if len(seed.Authors) > 0 {
		q.add(`EXISTS (SELECT 1 FROM book_authors ba JOIN authors a ON a.id = ba.author_id
			WHERE ba.book_id = b.id AND a.name = ANY(?))`, seed.Authors)
	}
	q.add(notReadBy, userID, statusStrings(models.ExcludedStatuses))

	sql := "SELECT " + bookColumns + " FROM books b" + q.clause() +
		" ORDER BY b.average_rating DESC NULLS LAST, b.id LIMIT " + q.next(limit)

	rows, err := s.db.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("similar books query failed: %w", err)
	}
	return collectBooks(rows)
}

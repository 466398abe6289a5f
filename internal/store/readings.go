package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/temcen/myndreader/pkg/models"
)

const readingColumns = `r.id, r.user_id, r.book_id, r.rating, r.status, r.start_date,
	r.finish_date, r.review, r.created_at,`

func scanReading(row pgx.Row) (models.Reading, error) {
	var r models.Reading
	var status string
	book, err := scanBook(row,
		&r.ID, &r.UserID, &r.BookID, &r.Rating, &status, &r.StartDate,
		&r.FinishDate, &r.Review, &r.CreatedAt,
	)
	if err != nil {
		return models.Reading{}, err
	}
	r.Status = models.ReadingStatus(status)
	r.Book = book
	return r, nil
}

func (s *PostgresStore) queryReadings(ctx context.Context, sql string, args ...interface{}) ([]models.Reading, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := []models.Reading{}
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}

// ReadingHistory returns the user's reading and completed books.
func (s *PostgresStore) ReadingHistory(ctx context.Context, userID int64) ([]models.Reading, error) {
	readings, err := s.queryReadings(ctx,
		"SELECT "+readingColumns+bookColumns+`
		FROM readings r JOIN books b ON b.id = r.book_id
		WHERE r.user_id = $1 AND r.status = ANY($2)
		ORDER BY r.id`,
		userID, statusStrings(models.HistoryStatuses),
	)
	if err != nil {
		return nil, fmt.Errorf("reading history query failed: %w", err)
	}
	return readings, nil
}

// ListReadings pages through a user's readings, optionally by status.
func (s *PostgresStore) ListReadings(ctx context.Context, userID int64, status string, skip, limit int) ([]models.Reading, error) {
	q := &queryBuilder{}
	q.add("r.user_id = ?", userID)
	if status != "" {
		q.add("r.status = ?", status)
	}
	sql := "SELECT " + readingColumns + bookColumns + " FROM readings r JOIN books b ON b.id = r.book_id" +
		q.clause() + " ORDER BY r.id OFFSET " + q.next(skip) + " LIMIT " + q.next(limit)

	readings, err := s.queryReadings(ctx, sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("list readings query failed: %w", err)
	}
	return readings, nil
}

func (s *PostgresStore) GetReading(ctx context.Context, userID, readingID int64) (*models.Reading, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+readingColumns+bookColumns+`
		FROM readings r JOIN books b ON b.id = r.book_id
		WHERE r.id = $1 AND r.user_id = $2`, readingID, userID)
	r, err := scanReading(row)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reading %d: %w", readingID, err)
	}
	return &r, nil
}

func (s *PostgresStore) ReadingExists(ctx context.Context, userID, bookID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM readings WHERE user_id = $1 AND book_id = $2)", userID, bookID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("reading lookup failed: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) CreateReading(ctx context.Context, userID int64, req models.ReadingRequest) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO readings (user_id, book_id, rating, status, start_date, finish_date, review)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		userID, req.BookID, req.Rating, string(req.Status), req.StartDate, req.FinishDate, req.Review,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert reading: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateReading(ctx context.Context, userID, readingID int64, req models.ReadingRequest) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE readings
		SET book_id = $3, rating = $4, status = $5, start_date = $6, finish_date = $7, review = $8
		WHERE id = $1 AND user_id = $2`,
		readingID, userID, req.BookID, req.Rating, string(req.Status), req.StartDate, req.FinishDate, req.Review,
	)
	if err != nil {
		return fmt.Errorf("failed to update reading %d: %w", readingID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

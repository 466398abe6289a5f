package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"github.com/temcen/myndreader/internal/store"
	"github.com/temcen/myndreader/pkg/models"
)

type CatalogService struct {
	store  CatalogStore
	logger *logrus.Logger
}

func NewCatalogService(catalogStore CatalogStore, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		store:  catalogStore,
		logger: logger,
	}
}

func (s *CatalogService) ListBooks(ctx context.Context, query models.BookQuery) ([]models.Book, error) {
	books, err := s.store.ListBooks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

func (s *CatalogService) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	book, err := s.store.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// CreateBook stores a new book. ISBNs must be unique and the language, when
// given, is stored as a canonical BCP 47 tag.
func (s *CatalogService) CreateBook(ctx context.Context, req models.CreateBookRequest) (*models.Book, error) {
	if req.Language != nil {
		tag, err := NormalizeLanguage(*req.Language)
		if err != nil {
			return nil, err
		}
		if tag == "" {
			req.Language = nil
		} else {
			req.Language = &tag
		}
	}

	if req.ISBN != nil && *req.ISBN != "" {
		exists, err := s.store.BookExistsByISBN(ctx, *req.ISBN)
		if err != nil {
			return nil, fmt.Errorf("failed to check isbn: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%w: book with ISBN %s", ErrDuplicate, *req.ISBN)
		}
	}

	id, err := s.store.CreateBook(ctx, req)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: book", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"book_id": id,
		"title":   req.Title,
	}).Info("Book created")

	return s.GetBook(ctx, id)
}

func (s *CatalogService) ListAuthors(ctx context.Context, search string, skip, limit int) ([]models.Author, error) {
	authors, err := s.store.ListAuthors(ctx, search, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	return authors, nil
}

func (s *CatalogService) CreateAuthor(ctx context.Context, name string) (*models.Author, error) {
	author, err := s.store.CreateAuthor(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: author %q", ErrDuplicate, name)
		}
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	return author, nil
}

func (s *CatalogService) ListGenres(ctx context.Context, skip, limit int) ([]models.Genre, error) {
	genres, err := s.store.ListGenres(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

func (s *CatalogService) CreateGenre(ctx context.Context, name string) (*models.Genre, error) {
	genre, err := s.store.CreateGenre(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: genre %q", ErrDuplicate, name)
		}
		return nil, fmt.Errorf("failed to create genre: %w", err)
	}
	return genre, nil
}

// NormalizeLanguage canonicalizes a language code, so "EN" and "en" count
// as the same language in taste profiles.
func NormalizeLanguage(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", nil
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, code)
	}
	return tag.String(), nil
}

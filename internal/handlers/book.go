package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/services"
	"github.com/temcen/myndreader/pkg/models"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// BookHandler serves the catalogue: books, authors and genres.
type BookHandler struct {
	catalog   services.CatalogServiceInterface
	validator *validator.Validate
	logger    *logrus.Logger
}

func NewBookHandler(catalog services.CatalogServiceInterface, logger *logrus.Logger) *BookHandler {
	return &BookHandler{
		catalog:   catalog,
		validator: validator.New(),
		logger:    logger,
	}
}

func (h *BookHandler) List(c *gin.Context) {
	skip, ok := intQuery(c, "skip", 0, 0, maxInt)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", defaultListLimit, 1, maxListLimit)
	if !ok {
		return
	}
	minRating, ok := floatQuery(c, "min_rating", 0, 5)
	if !ok {
		return
	}
	maxPages, ok := optionalIntQuery(c, "max_page_count", 1)
	if !ok {
		return
	}

	books, err := h.catalog.ListBooks(c.Request.Context(), models.BookQuery{
		Search:       strings.TrimSpace(c.Query("search")),
		Genre:        strings.TrimSpace(c.Query("genre")),
		Author:       strings.TrimSpace(c.Query("author")),
		MinRating:    minRating,
		MaxPageCount: maxPages,
		Skip:         skip,
		Limit:        limit,
	})
	if err != nil {
		respondServiceError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, books)
}

func (h *BookHandler) Get(c *gin.Context) {
	bookID, ok := idParam(c, "bookId")
	if !ok {
		return
	}

	book, err := h.catalog.GetBook(c.Request.Context(), bookID)
	if err != nil {
		respondServiceError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) Create(c *gin.Context) {
	var req models.CreateBookRequest
	if !bindJSON(c, h.validator, h.logger, &req) {
		return
	}

	book, err := h.catalog.CreateBook(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err, errorMessages{services.ErrDuplicate: msgDuplicateBook})
		return
	}

	c.JSON(http.StatusCreated, book)
}

func (h *BookHandler) ListAuthors(c *gin.Context) {
	skip, ok := intQuery(c, "skip", 0, 0, maxInt)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", defaultListLimit, 1, maxListLimit)
	if !ok {
		return
	}

	authors, err := h.catalog.ListAuthors(c.Request.Context(), strings.TrimSpace(c.Query("search")), skip, limit)
	if err != nil {
		respondServiceError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, authors)
}

func (h *BookHandler) CreateAuthor(c *gin.Context) {
	var req models.Author
	if !bindJSON(c, h.validator, h.logger, &req) {
		return
	}

	author, err := h.catalog.CreateAuthor(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, h.logger, err, errorMessages{services.ErrDuplicate: msgDuplicateAuthor})
		return
	}

	c.JSON(http.StatusCreated, author)
}

func (h *BookHandler) ListGenres(c *gin.Context) {
	skip, ok := intQuery(c, "skip", 0, 0, maxInt)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", defaultListLimit, 1, maxListLimit)
	if !ok {
		return
	}

	genres, err := h.catalog.ListGenres(c.Request.Context(), skip, limit)
	if err != nil {
		respondServiceError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, genres)
}

func (h *BookHandler) CreateGenre(c *gin.Context) {
	var req models.Genre
	if !bindJSON(c, h.validator, h.logger, &req) {
		return
	}

	genre, err := h.catalog.CreateGenre(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, h.logger, err, errorMessages{services.ErrDuplicate: msgDuplicateGenre})
		return
	}

	c.JSON(http.StatusCreated, genre)
}

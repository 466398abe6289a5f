package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/temcen/myndreader/internal/services"
	"github.com/temcen/myndreader/pkg/models"
)

func bookRouter(svc *MockCatalogService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBookHandler(svc, testLogger())
	router := gin.New()
	router.GET("/books", h.List)
	router.GET("/books/:bookId", h.Get)
	router.POST("/books", h.Create)
	router.GET("/authors", h.ListAuthors)
	router.POST("/authors", h.CreateAuthor)
	router.GET("/genres", h.ListGenres)
	router.POST("/genres", h.CreateGenre)
	return router
}

func TestBookHandler_List(t *testing.T) {
	svc := new(MockCatalogService)
	svc.On("ListBooks", mock.Anything, models.BookQuery{Skip: 0, Limit: 100}).Return([]models.Book{}, nil)
	svc.On("ListBooks", mock.Anything, models.BookQuery{
		Search:       "dark",
		Genre:        "Fantasy",
		Author:       "Le Guin",
		MinRating:    floatPtr(4),
		MaxPageCount: intPtr(300),
		Skip:         10,
		Limit:        5,
	}).Return([]models.Book{{ID: 1}}, nil)
	router := bookRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/books?search=dark&genre=Fantasy&author=Le+Guin&min_rating=4&max_page_count=300&skip=10&limit=5", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books?skip=-1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestBookHandler_Get(t *testing.T) {
	svc := new(MockCatalogService)
	svc.On("GetBook", mock.Anything, int64(4)).Return(nil, services.ErrBookNotFound)

	w := httptest.NewRecorder()
	bookRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/4", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	_, message := decodeError(t, w)
	assert.Equal(t, "Book not found", message)
}

func TestBookHandler_Create(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		mockSetup       func(*MockCatalogService)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "created",
			body: `{"title": "Tehanu", "author_ids": [1], "genre_ids": [2], "language": "en"}`,
			mockSetup: func(m *MockCatalogService) {
				lang := "en"
				m.On("CreateBook", mock.Anything, models.CreateBookRequest{
					Title: "Tehanu", AuthorIDs: []int64{1}, GenreIDs: []int64{2}, Language: &lang,
				}).Return(&models.Book{ID: 9, Title: "Tehanu"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			body:           `{"page_count": 200}`,
			mockSetup:      func(m *MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate isbn",
			body: `{"title": "Tehanu", "isbn": "9780689315954"}`,
			mockSetup: func(m *MockCatalogService) {
				m.On("CreateBook", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicate)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Book with this ISBN already exists",
		},
		{
			name: "bad language",
			body: `{"title": "Tehanu", "language": "??"}`,
			mockSetup: func(m *MockCatalogService) {
				m.On("CreateBook", mock.Anything, mock.Anything).Return(nil, services.ErrInvalidLanguage)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCatalogService)
			tt.mockSetup(svc)

			w := sendJSON(bookRouter(svc), http.MethodPost, "/books", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedMessage != "" {
				_, message := decodeError(t, w)
				assert.Equal(t, tt.expectedMessage, message)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestBookHandler_AuthorsAndGenres(t *testing.T) {
	svc := new(MockCatalogService)
	svc.On("ListAuthors", mock.Anything, "guin", 0, 100).Return([]models.Author{{ID: 1, Name: "Ursula K. Le Guin"}}, nil)
	svc.On("CreateAuthor", mock.Anything, "Octavia Butler").Return(&models.Author{ID: 2, Name: "Octavia Butler"}, nil)
	svc.On("ListGenres", mock.Anything, 0, 20).Return([]models.Genre{}, nil)
	svc.On("CreateGenre", mock.Anything, "Fantasy").Return(nil, services.ErrDuplicate)
	router := bookRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/authors?search=guin", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = sendJSON(router, http.MethodPost, "/authors", `{"name": "Octavia Butler"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = sendJSON(router, http.MethodPost, "/authors", `{"name": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/genres?limit=20", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = sendJSON(router, http.MethodPost, "/genres", `{"name": "Fantasy"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	_, message := decodeError(t, w)
	assert.Equal(t, "Genre already exists", message)

	svc.AssertExpectations(t)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/myndreader/internal/services"
	"github.com/temcen/myndreader/pkg/models"
)

func userRouter(svc *MockUserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(svc, testLogger())
	router := gin.New()
	router.POST("/users", h.Create)
	router.GET("/users/:userId", h.Get)
	router.GET("/users/:userId/readings", h.ListReadings)
	router.POST("/users/:userId/readings", h.AddReading)
	router.PUT("/users/:userId/readings/:readingId", h.UpdateReading)
	router.GET("/users/:userId/preferences", h.GetPreferences)
	router.POST("/users/:userId/preferences", h.SavePreferences)
	return router
}

func sendJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUserHandler_Create(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		mockSetup       func(*MockUserService)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "created",
			body: `{"email": "ada@example.com", "username": "ada", "password": "correct horse"}`,
			mockSetup: func(m *MockUserService) {
				m.On("CreateUser", mock.Anything, models.CreateUserRequest{
					Email: "ada@example.com", Username: "ada", Password: "correct horse",
				}).Return(&models.User{ID: 1, Email: "ada@example.com", Username: "ada", HashedPassword: "secret-hash"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid email",
			body:           `{"email": "nope", "username": "ada", "password": "correct horse"}`,
			mockSetup:      func(m *MockUserService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "short password",
			body:           `{"email": "ada@example.com", "username": "ada", "password": "short"}`,
			mockSetup:      func(m *MockUserService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate",
			body: `{"email": "ada@example.com", "username": "ada", "password": "correct horse"}`,
			mockSetup: func(m *MockUserService) {
				m.On("CreateUser", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicate)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "User with this email or username already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockUserService)
			tt.mockSetup(svc)

			w := sendJSON(userRouter(svc), http.MethodPost, "/users", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotContains(t, w.Body.String(), "secret-hash")
			if tt.expectedMessage != "" {
				_, message := decodeError(t, w)
				assert.Equal(t, tt.expectedMessage, message)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestUserHandler_Get(t *testing.T) {
	svc := new(MockUserService)
	svc.On("GetUser", mock.Anything, int64(1)).Return(&models.User{ID: 1, Username: "ada"}, nil)
	svc.On("GetUser", mock.Anything, int64(2)).Return(nil, services.ErrUserNotFound)
	router := userRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/2", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_ListReadings(t *testing.T) {
	svc := new(MockUserService)
	svc.On("ListReadings", mock.Anything, int64(1), "", 0, services.DefaultReadingsLimit).Return([]models.Reading{}, nil)
	svc.On("ListReadings", mock.Anything, int64(1), "completed", 5, 10).Return([]models.Reading{{ID: 3}}, nil)
	router := userRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/1/readings", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/1/readings?status=completed&skip=5&limit=10", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/1/readings?status=skimmed", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestUserHandler_AddReading(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("AddReading", mock.Anything, int64(1), models.ReadingRequest{BookID: 5, Rating: floatPtr(4)}).
			Return(&models.Reading{ID: 8, UserID: 1, BookID: 5, Status: models.StatusWantToRead}, nil)

		w := sendJSON(userRouter(svc), http.MethodPost, "/users/1/readings", `{"book_id": 5, "rating": 4}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var reading models.Reading
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reading))
		assert.Equal(t, models.StatusWantToRead, reading.Status)
	})

	t.Run("missing book id", func(t *testing.T) {
		svc := new(MockUserService)
		w := sendJSON(userRouter(svc), http.MethodPost, "/users/1/readings", `{"status": "reading"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rating out of range", func(t *testing.T) {
		svc := new(MockUserService)
		w := sendJSON(userRouter(svc), http.MethodPost, "/users/1/readings", `{"book_id": 5, "rating": 0.5}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("book not found", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("AddReading", mock.Anything, int64(1), mock.Anything).Return(nil, services.ErrBookNotFound)

		w := sendJSON(userRouter(svc), http.MethodPost, "/users/1/readings", `{"book_id": 5}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		_, message := decodeError(t, w)
		assert.Equal(t, "Book not found", message)
	})

	t.Run("already on list", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("AddReading", mock.Anything, int64(1), mock.Anything).Return(nil, services.ErrDuplicate)

		w := sendJSON(userRouter(svc), http.MethodPost, "/users/1/readings", `{"book_id": 5}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_UpdateReading(t *testing.T) {
	svc := new(MockUserService)
	svc.On("UpdateReading", mock.Anything, int64(1), int64(8), models.ReadingRequest{Status: models.StatusCompleted}).
		Return(&models.Reading{ID: 8, Status: models.StatusCompleted}, nil)
	svc.On("UpdateReading", mock.Anything, int64(1), int64(9), mock.Anything).Return(nil, services.ErrReadingNotFound)
	router := userRouter(svc)

	w := sendJSON(router, http.MethodPut, "/users/1/readings/8", `{"status": "completed"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = sendJSON(router, http.MethodPut, "/users/1/readings/9", `{"status": "completed"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	_, message := decodeError(t, w)
	assert.Equal(t, "Reading entry not found", message)

	w = sendJSON(router, http.MethodPut, "/users/1/readings/8", `{"status": "skimmed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_Preferences(t *testing.T) {
	svc := new(MockUserService)
	svc.On("GetPreferences", mock.Anything, int64(1)).Return(models.DefaultPreference(1), nil)
	svc.On("SavePreferences", mock.Anything, int64(1), models.PreferenceRequest{
		PreferredGenres: []string{"Fantasy"},
		MaxPageCount:    intPtr(350),
	}).Return(&models.UserPreference{ID: 1, UserID: 1, PreferredGenres: []string{"Fantasy"}, MaxPageCount: intPtr(350)}, nil)
	router := userRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/1/preferences", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var pref models.UserPreference
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pref))
	assert.Equal(t, 3.0, *pref.MinRating)
	assert.Equal(t, []string{}, pref.PreferredGenres)

	w = sendJSON(router, http.MethodPost, "/users/1/preferences", `{"preferred_genres": ["Fantasy"], "max_page_count": 350}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = sendJSON(router, http.MethodPost, "/users/1/preferences", `{"min_rating": 7}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

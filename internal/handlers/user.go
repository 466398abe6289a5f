package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/services"
	"github.com/temcen/myndreader/pkg/models"
)

// UserHandler serves users, their reading lists and their preferences.
type UserHandler struct {
	users     services.UserServiceInterface
	validator *validator.Validate
	logger    *logrus.Logger
}

func NewUserHandler(users services.UserServiceInterface, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		validator: validator.New(),
		logger:    logger,
	}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, h.validator, h.logger, &req) {
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err, errorMessages{services.ErrDuplicate: msgDuplicateUser})
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListReadings(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	skip, ok := intQuery(c, "skip", 0, 0, maxInt)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", services.DefaultReadingsLimit, 1, maxListLimit)
	if !ok {
		return
	}

	status := c.Query("status")
	if status != "" && !models.ReadingStatus(status).Valid() {
		respondError(c, http.StatusBadRequest, "INVALID_QUERY_PARAM", "Invalid reading status")
		return
	}

	readings, err := h.users.ListReadings(c.Request.Context(), userID, status, skip, limit)
	if err != nil {
		respondServiceError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, readings)
}

func (h *UserHandler) AddReading(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}

	var req models.ReadingRequest
	if !bindJSON(c, h.validator, h.logger, &req) {
		return
	}

	reading, err := h.users.AddReading(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, h.logger, err, errorMessages{services.ErrDuplicate: msgDuplicateReading})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"book_id": req.BookID,
		"status":  reading.Status,
	}).Info("Reading added")

	c.JSON(http.StatusCreated, reading)
}

// UpdateReading applies a partial update; book_id may be omitted.
func (h *UserHandler) UpdateReading(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	readingID, ok := idParam(c, "readingId")
	if !ok {
		return
	}

	var req models.ReadingUpdateRequest
	if !bindJSON(c, h.validator, h.logger, &req) {
		return
	}

	reading, err := h.users.UpdateReading(c.Request.Context(), userID, readingID, req.ReadingRequest())
	if err != nil {
		respondServiceError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, reading)
}

func (h *UserHandler) GetPreferences(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}

	pref, err := h.users.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, pref)
}

func (h *UserHandler) SavePreferences(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}

	var req models.PreferenceRequest
	if !bindJSON(c, h.validator, h.logger, &req) {
		return
	}

	pref, err := h.users.SavePreferences(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, pref)
}

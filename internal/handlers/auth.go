package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/pkg/models"
)

// TokenIssuer exchanges API keys for session tokens.
type TokenIssuer interface {
	Login(ctx context.Context, apiKey string) (*models.AuthResponse, error)
}

type AuthHandler struct {
	issuer    TokenIssuer
	validator *validator.Validate
	logger    *logrus.Logger
}

func NewAuthHandler(issuer TokenIssuer, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		issuer:    issuer,
		validator: validator.New(),
		logger:    logger,
	}
}

func (h *AuthHandler) Token(c *gin.Context) {
	var req models.AuthRequest
	if !bindJSON(c, h.validator, h.logger, &req) {
		return
	}

	resp, err := h.issuer.Login(c.Request.Context(), req.APIKey)
	if err != nil {
		h.logger.WithError(err).WithField("client_ip", c.ClientIP()).Warn("Token request rejected")
		respondServiceError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, resp)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/myndreader/internal/config"
	"github.com/temcen/myndreader/pkg/models"
)

const tokenIssuer = "github.com/temcen/myndreader"

// AuthService turns API keys into client identities and signed session
// tokens. Sessions live in Redis so tokens can be revoked.
type AuthService struct {
	config      *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
	jwtSecret   []byte
}

func NewAuthService(cfg *config.Config, logger *logrus.Logger, redisClient *redis.Client) *AuthService {
	return &AuthService{
		config:      cfg,
		logger:      logger,
		redisClient: redisClient,
		jwtSecret:   []byte(cfg.Auth.JWTSecret),
	}
}

// ClientIDForKey derives a stable client id from an API key, so the key
// itself never ends up in tokens or logs.
func ClientIDForKey(apiKey string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(apiKey)).String()
}

func sessionKey(clientID string) string {
	return fmt.Sprintf("session:%s", clientID)
}

// Login exchanges an API key for a signed token.
func (s *AuthService) Login(ctx context.Context, apiKey string) (*models.AuthResponse, error) {
	tier, err := s.ValidateAPIKey(apiKey)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.GenerateToken(ctx, ClientIDForKey(apiKey), tier)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Tier:      tier,
	}, nil
}

func (s *AuthService) GenerateToken(ctx context.Context, clientID, tier string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.Auth.TokenTTL)
	claims := &models.JWTClaims{
		ClientID:   clientID,
		ClientTier: tier,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	// Token generation still succeeds when Redis is down.
	if err := s.redisClient.Set(ctx, sessionKey(clientID), claims.ID, s.config.Auth.TokenTTL).Err(); err != nil {
		s.logger.WithError(err).Warn("Failed to store session in Redis")
	}

	return tokenString, expiresAt, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	// Only the latest token of a client is live. Validation continues when
	// Redis is unreachable.
	current, err := s.redisClient.Get(ctx, sessionKey(claims.ClientID)).Result()
	switch {
	case err == redis.Nil:
		return nil, fmt.Errorf("session not found or expired")
	case err != nil:
		s.logger.WithError(err).Warn("Failed to check session in Redis")
	case current != claims.ID:
		return nil, fmt.Errorf("session superseded")
	}

	return claims, nil
}

func (s *AuthService) RevokeToken(ctx context.Context, clientID string) error {
	if err := s.redisClient.Del(ctx, sessionKey(clientID)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// ValidateAPIKey returns the tier configured for apiKey.
func (s *AuthService) ValidateAPIKey(apiKey string) (string, error) {
	if tier, exists := s.config.Auth.APIKeys[apiKey]; exists && apiKey != "" {
		return tier, nil
	}
	return "", ErrInvalidAPIKey
}

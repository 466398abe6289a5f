package services

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrBookNotFound        = errors.New("book not found")
	ErrReadingNotFound     = errors.New("reading not found")
	ErrDuplicate           = errors.New("already exists")
	ErrNoRecommendations   = errors.New("no recommendations found")
	ErrInvalidComfortLevel = errors.New("invalid comfort level")
	ErrInvalidAPIKey       = errors.New("invalid API key")
	ErrInvalidLanguage     = errors.New("invalid language code")
)

package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidPlan         = errors.New("invalid plan")
	ErrTierNotPermitted    = errors.New("voice tier not permitted for plan")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrProviderFailure     = errors.New("speech provider failure")
)

package domain

import "errors"

var (
	ErrSessionNotFound     = errors.New("session snapshot not found")
	ErrRetryBudgetNotFound = errors.New("retry budget not found")
	ErrSecretNotFound      = errors.New("secret not found")
	ErrMissingResource     = errors.New("resource type or url override is required")
	ErrMissingCredential   = errors.New("credential is required")
	ErrNotAuthenticated    = errors.New("session is not authenticated")
)

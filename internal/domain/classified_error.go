package domain

import "fmt"

const (
	MessageBadRequest     = "Bad request"
	MessageBadGateway     = "Bad Gateway"
	MessageGatewayTimeout = "Something went wrong"
	MessageServerError    = "Server error"
	MessageGenericError   = "An error occurred"
	MessageNetworkError   = "Network error"
)

// ClassifiedError is the normalized result of interpreting a failed request.
// It is derived once, at the transport boundary, and never mutated afterwards.
type ClassifiedError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	// Returnable tells the caller to navigate back rather than retry.
	Returnable bool `json:"returnKey"`
}

func (e ClassifiedError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

func (e ClassifiedError) IsServerError() bool {
	return e.Status >= 500 && e.Status < 600
}

func (e ClassifiedError) IsCredentialExpiry() bool {
	return e.Status == 401 || e.Status == 403
}

package ports

import (
	"context"

	"github.com/bnema/adminkit/internal/domain"
)

// Transport executes a canonical request. Failures come back already
// classified in Result.Error; Transport never returns raw transport errors.
type Transport interface {
	Execute(ctx context.Context, req domain.Request) domain.Result
}

// RealtimeChannel is the push connection bound to the current credential.
type RealtimeChannel interface {
	Open(ctx context.Context, credential string) error
	Close() error
}

// CredentialSource yields the bearer credential for outbound requests.
type CredentialSource interface {
	Credential() string
}

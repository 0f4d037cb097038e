package ports

import (
	"context"

	"github.com/bnema/adminkit/internal/domain"
)

// SessionRepository persists the allow-listed auth snapshot.
type SessionRepository interface {
	Load(ctx context.Context) (domain.SessionSnapshot, error)
	Save(ctx context.Context, snapshot domain.SessionSnapshot) error
}

// RetryBudgetStore persists the retry counter with the time it was last written.
type RetryBudgetStore interface {
	Load(ctx context.Context) (domain.RetryBudget, error)
	Save(ctx context.Context, budget domain.RetryBudget) error
	Clear(ctx context.Context) error
}

package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/bnema/adminkit/internal/ports"
	"github.com/spf13/viper"
)

const (
	retryPathKey  = "retry.path"
	retryFileName = "retry_budget.toml"
	retryLabel    = "retry-budget"
)

// RetryBudgetRepository persists the retry counter and its write time.
type RetryBudgetRepository struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.RetryBudgetStore = (*RetryBudgetRepository)(nil)

func NewRetryBudgetRepository(cfg *viper.Viper) (*RetryBudgetRepository, error) {
	path, err := resolvePath(cfg, retryPathKey, retryFileName)
	if err != nil {
		return nil, err
	}

	return &RetryBudgetRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *RetryBudgetRepository) Load(ctx context.Context) (domain.RetryBudget, error) {
	if err := ctx.Err(); err != nil {
		return domain.RetryBudget{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var file retryBudgetFileSchema
	found, err := readTOMLFile(r.path, retryLabel, &file)
	if err != nil {
		return domain.RetryBudget{}, err
	}
	if !found {
		return domain.RetryBudget{}, domain.ErrRetryBudgetNotFound
	}
	if err := file.validateVersion(); err != nil {
		return domain.RetryBudget{}, err
	}

	budget := domain.RetryBudget{Count: file.Count}
	if file.Timestamp > 0 {
		budget.Timestamp = time.UnixMilli(file.Timestamp).UTC()
	}

	return budget, nil
}

func (r *RetryBudgetRepository) Save(ctx context.Context, budget domain.RetryBudget) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file := retryBudgetFileSchema{Count: budget.Count}
	if !budget.Timestamp.IsZero() {
		file.Timestamp = budget.Timestamp.UnixMilli()
	}
	file.applyDefaults()

	return writeTOMLFile(r.path, retryLabel, file)
}

func (r *RetryBudgetRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove retry budget file: %w", err)
	}

	return nil
}

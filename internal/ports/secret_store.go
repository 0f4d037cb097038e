package ports

import "context"

// SecretStore holds secret values addressed by a reference key, such as the
// secret of a remembered login.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

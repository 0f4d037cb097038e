package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionRepository(t *testing.T, path string) *SessionRepository {
	t.Helper()

	config := viper.New()
	config.Set("session.path", path)

	repo, err := NewSessionRepository(config)
	require.NoError(t, err)
	return repo
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestSessionRepository(t, filepath.Join(t.TempDir(), "session.toml"))

	snapshot := domain.SessionSnapshot{
		Credential: "tok",
		Identity:   domain.Identity{Email: "ada@example.com", Name: "Ada", Role: "owner"},
		AccountMemberships: []domain.AccountMembership{
			{ID: "acc-1", Name: "Main"},
			{ID: "acc-2", Name: "Staging"},
		},
		CredentialExpired: true,
		Remembered:        domain.RememberedLogin{Email: "ada@example.com", SecretRef: "remembered/ada@example.com"},
	}

	require.NoError(t, repo.Save(context.Background(), snapshot))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snapshot, got)
}

func TestSessionRepositoryLoggedOutSnapshotKeepsOnlyRememberedLogin(t *testing.T) {
	t.Parallel()

	repo := newTestSessionRepository(t, filepath.Join(t.TempDir(), "session.toml"))
	cleared := domain.Session{
		Credential: "tok",
		Remembered: domain.RememberedLogin{Email: "ada@example.com"},
	}.Cleared()

	require.NoError(t, repo.Save(context.Background(), cleared.Snapshot()))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStateAnonymous, got.Restore().State)
	assert.Equal(t, "ada@example.com", got.Remembered.Email)
	assert.Empty(t, got.Credential)
}

func TestSessionRepositoryMissingFileReturnsNotFound(t *testing.T) {
	t.Parallel()

	repo := newTestSessionRepository(t, filepath.Join(t.TempDir(), "missing", "session.toml"))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepositorySaveCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	repo, err := NewSessionRepository(viper.New())
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), domain.SessionSnapshot{Credential: "tok"}))

	path := filepath.Join(homeDir, ".adminkit", "session.toml")
	assert.Equal(t, path, repo.Path())
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
}

func TestSessionRepositoryMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte("session = ["), 0o600))

	_, err := newTestSessionRepository(t, path).Load(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode session file")
}

func TestSessionRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"version = 999",
		"",
		"[session]",
		"credential = \"tok\"",
		"",
	}, "\n")), 0o600))

	_, err := newTestSessionRepository(t, path).Load(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported session schema version")
}

func TestSessionRepositorySaveCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo := newTestSessionRepository(t, filepath.Join(t.TempDir(), "session.toml"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Save(ctx, domain.SessionSnapshot{Credential: "tok"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSessionRepositoryConcurrentSavesAcrossInstancesStayReadable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.toml")
	repoA := newTestSessionRepository(t, path)
	repoB := newTestSessionRepository(t, path)

	const writes = 50
	var wg sync.WaitGroup
	errCh := make(chan error, writes*2)
	for _, repo := range []*SessionRepository{repoA, repoB} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range writes {
				errCh <- repo.Save(context.Background(), domain.SessionSnapshot{Credential: "tok"})
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	got, err := repoB.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Credential)
}

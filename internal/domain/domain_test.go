package domain

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionClearedKeepsOnlyRememberedLogin(t *testing.T) {
	session := Session{
		Credential:         "token",
		Identity:           Identity{Email: "a@example.com", Name: "A", Role: "admin"},
		AccountMemberships: []AccountMembership{{ID: "1", Name: "Acme"}},
		SessionExpired:     true,
		RetryCount:         3,
		LastErrorSeen:      "boom",
		Remembered:         RememberedLogin{Email: "a@example.com", SecretRef: "remembered/a"},
		State:              SessionStateSessionExpiring,
	}

	cleared := session.Cleared()
	assert.Equal(t, Session{
		Remembered: RememberedLogin{Email: "a@example.com", SecretRef: "remembered/a"},
		State:      SessionStateLoggedOut,
	}, cleared)
	assert.Equal(t, cleared, cleared.Cleared())
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	session := Session{
		Credential:         "token",
		Identity:           Identity{Email: "a@example.com"},
		AccountMemberships: []AccountMembership{{ID: "1", Name: "Acme"}},
		RetryCount:         4,
		LastErrorSeen:      "boom",
		State:              SessionStateAuthenticated,
	}

	restored := session.Snapshot().Restore()
	assert.Equal(t, SessionStateAuthenticated, restored.State)
	assert.Equal(t, "token", restored.Credential)
	assert.Zero(t, restored.RetryCount)
	assert.Empty(t, restored.LastErrorSeen)
	require.Len(t, restored.AccountMemberships, 1)

	assert.Equal(t, SessionStateAnonymous, SessionSnapshot{}.Restore().State)
	assert.Equal(t, SessionStateAnonymous, SessionSnapshot{Credential: "t", CredentialExpired: true}.Restore().State)
}

func TestRetryBudgetIsStale(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	assert.True(t, RetryBudget{}.IsStale(now))
	assert.True(t, RetryBudget{Count: 3, Timestamp: now.Add(-61 * time.Second)}.IsStale(now))
	assert.False(t, RetryBudget{Count: 3, Timestamp: now.Add(-30 * time.Second)}.IsStale(now))
}

func TestClassifiedErrorPredicates(t *testing.T) {
	err := ClassifiedError{Status: http.StatusBadGateway, Message: MessageBadGateway}
	assert.True(t, err.IsServerError())
	assert.False(t, err.IsCredentialExpiry())
	assert.Equal(t, "status 502: Bad Gateway", err.Error())

	assert.True(t, ClassifiedError{Status: http.StatusForbidden}.IsCredentialExpiry())
	assert.False(t, ClassifiedError{Status: http.StatusBadRequest}.IsServerError())
}

func TestParseSortDirection(t *testing.T) {
	got, err := ParseSortDirection("DESC")
	require.NoError(t, err)
	assert.Equal(t, SortDescending, got)

	_, err = ParseSortDirection("sideways")
	require.Error(t, err)
}

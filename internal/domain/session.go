package domain

import (
	"strings"
	"time"
)

type SessionState string

const (
	SessionStateAnonymous       SessionState = "anonymous"
	SessionStateAuthenticated   SessionState = "authenticated"
	SessionStateSessionExpiring SessionState = "session_expiring"
	SessionStateLoggedOut       SessionState = "logged_out"
)

const (
	// MaxRetries is the retry budget that moves a session into SessionExpiring.
	MaxRetries = 5
	// RetryBudgetWindow bounds how long a persisted retry count stays relevant.
	RetryBudgetWindow = 60 * time.Second
	// SessionExpiringCountdown is the number of one-second ticks before a forced logout.
	SessionExpiringCountdown = 10
)

type Identity struct {
	Email string
	Name  string
	Role  string
}

type AccountMembership struct {
	ID   string
	Name string
}

// RememberedLogin survives logout. The secret itself lives in a secret store
// and is only referenced here.
type RememberedLogin struct {
	Email     string
	SecretRef string
}

func (r RememberedLogin) IsZero() bool {
	return strings.TrimSpace(r.Email) == "" && strings.TrimSpace(r.SecretRef) == ""
}

type Session struct {
	Credential         string
	Identity           Identity
	AccountMemberships []AccountMembership
	SessionExpired     bool
	CredentialExpired  bool
	RetryCount         int
	LastErrorSeen      string
	Remembered         RememberedLogin
	State              SessionState
}

func (s Session) IsAuthenticated() bool {
	return s.State == SessionStateAuthenticated || s.State == SessionStateSessionExpiring
}

// Cleared returns the session left behind by a logout: everything is reset
// except the remembered login.
func (s Session) Cleared() Session {
	return Session{
		Remembered: s.Remembered,
		State:      SessionStateLoggedOut,
	}
}

// Snapshot restricts the session to the fields allowed to survive a restart.
func (s Session) Snapshot() SessionSnapshot {
	memberships := make([]AccountMembership, len(s.AccountMemberships))
	copy(memberships, s.AccountMemberships)

	return SessionSnapshot{
		Credential:         s.Credential,
		Identity:           s.Identity,
		AccountMemberships: memberships,
		SessionExpired:     s.SessionExpired,
		CredentialExpired:  s.CredentialExpired,
		Remembered:         s.Remembered,
	}
}

// SessionSnapshot is the allow-listed auth state persisted across restarts.
// Resource cache state, the retry counter and the last seen error are never part of it.
type SessionSnapshot struct {
	Credential         string
	Identity           Identity
	AccountMemberships []AccountMembership
	SessionExpired     bool
	CredentialExpired  bool
	Remembered         RememberedLogin
}

// Restore rebuilds a session from a snapshot. A snapshot carrying a
// credential comes back Authenticated, anything else is Anonymous.
func (s SessionSnapshot) Restore() Session {
	state := SessionStateAnonymous
	if strings.TrimSpace(s.Credential) != "" && !s.SessionExpired && !s.CredentialExpired {
		state = SessionStateAuthenticated
	}

	memberships := make([]AccountMembership, len(s.AccountMemberships))
	copy(memberships, s.AccountMemberships)

	return Session{
		Credential:         s.Credential,
		Identity:           s.Identity,
		AccountMemberships: memberships,
		SessionExpired:     s.SessionExpired,
		CredentialExpired:  s.CredentialExpired,
		Remembered:         s.Remembered,
		State:              state,
	}
}

type RetryBudget struct {
	Count     int
	Timestamp time.Time
}

// IsStale reports whether the persisted budget is older than the window.
func (b RetryBudget) IsStale(now time.Time) bool {
	if b.Timestamp.IsZero() {
		return true
	}

	return now.Sub(b.Timestamp) > RetryBudgetWindow
}

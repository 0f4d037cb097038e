package domain

import "time"

type EventKind string

const (
	EventErrorClassified   EventKind = "error.classified"
	EventCredentialExpired EventKind = "credential.expired"
	EventAuthenticated     EventKind = "session.authenticated"
	EventSessionExpiring   EventKind = "session.expiring"
	EventCountdownTick     EventKind = "countdown.tick"
	EventLoggedOut         EventKind = "session.logged_out"
	EventRetryRecorded     EventKind = "retry.recorded"
)

type LogoutReason string

const (
	LogoutReasonUser              LogoutReason = "user"
	LogoutReasonCredentialExpired LogoutReason = "credential_expired"
	LogoutReasonSessionExpired    LogoutReason = "session_expired"
	LogoutReasonCountdown         LogoutReason = "countdown"
)

type Event struct {
	ID   string
	Kind EventKind
	At   time.Time
	// Error is set for error.classified and credential.expired.
	Error *ClassifiedError
	// Remaining is the countdown value for session.expiring and countdown.tick.
	Remaining int
	Reason    LogoutReason
}

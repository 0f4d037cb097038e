package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/bnema/adminkit/internal/ports"
	"github.com/rs/zerolog"
)

const rememberedSecretPrefix = "remembered/"

type SessionConfig struct {
	MaxRetries       int
	CountdownSeconds int
	TickInterval     time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxRetries:       domain.MaxRetries,
		CountdownSeconds: domain.SessionExpiringCountdown,
		TickInterval:     time.Second,
	}
}

type SessionDeps struct {
	Sessions ports.SessionRepository
	Retries  ports.RetryBudgetStore
	Secrets  ports.SecretStore
	Channel  ports.RealtimeChannel
	Events   ports.EventPublisher
	Clock    ports.Clock
	Logger   zerolog.Logger
}

type LoginCommand struct {
	Credential  string
	Identity    domain.Identity
	Memberships []domain.AccountMembership
	// Remember keeps the login across logouts; RememberSecret, when set, is
	// stored in the secret store and only referenced from the snapshot.
	Remember       bool
	RememberSecret string
}

// Subscriber is the subscription side of the event bus.
type Subscriber interface {
	Subscribe(fn func(domain.Event)) func()
}

// SessionController owns the authentication state. All mutations go through
// its methods and are serialized by mu; events are published after mu is
// released so subscribers may call back into the controller.
type SessionController struct {
	sessions ports.SessionRepository
	retries  ports.RetryBudgetStore
	secrets  ports.SecretStore
	channel  ports.RealtimeChannel
	events   ports.EventPublisher
	clock    ports.Clock
	logger   zerolog.Logger
	cfg      SessionConfig

	countdown *Countdown

	mu           sync.Mutex
	session      domain.Session
	countdownGen uint64
}

var _ ports.CredentialSource = (*SessionController)(nil)

// NewSessionController restores the persisted snapshot and retry budget. A
// budget older than the retry window is cleared and starts again from zero.
func NewSessionController(ctx context.Context, deps SessionDeps, cfg SessionConfig) (*SessionController, error) {
	if deps.Sessions == nil {
		return nil, errors.New("session repository is nil")
	}
	if deps.Retries == nil {
		return nil, errors.New("retry budget store is nil")
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}

	defaults := DefaultSessionConfig()
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.CountdownSeconds <= 0 {
		cfg.CountdownSeconds = defaults.CountdownSeconds
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaults.TickInterval
	}

	c := &SessionController{
		sessions:  deps.Sessions,
		retries:   deps.Retries,
		secrets:   deps.Secrets,
		channel:   deps.Channel,
		events:    deps.Events,
		clock:     deps.Clock,
		logger:    deps.Logger,
		cfg:       cfg,
		countdown: NewCountdown(cfg.CountdownSeconds, cfg.TickInterval),
	}

	snapshot, err := deps.Sessions.Load(ctx)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("load session snapshot: %w", err)
	}
	c.session = snapshot.Restore()

	count, err := c.loadRetryCount(ctx)
	if err != nil {
		return nil, err
	}
	c.session.RetryCount = count

	return c, nil
}

func (c *SessionController) loadRetryCount(ctx context.Context) (int, error) {
	budget, err := c.retries.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrRetryBudgetNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load retry budget: %w", err)
	}

	if budget.IsStale(c.clock.Now()) {
		if err := c.retries.Clear(ctx); err != nil {
			return 0, fmt.Errorf("clear stale retry budget: %w", err)
		}
		return 0, nil
	}

	return budget.Count, nil
}

// Attach subscribes the controller to the interceptor's events.
func (c *SessionController) Attach(bus Subscriber) func() {
	return bus.Subscribe(func(event domain.Event) {
		switch event.Kind {
		case domain.EventErrorClassified:
			if event.Error != nil {
				c.RecordServerError(*event.Error)
			}
		case domain.EventCredentialExpired:
			if err := c.HandleCredentialExpired(context.Background()); err != nil {
				c.logger.Error().Err(err).Msg("session.credential_expired.logout_failed")
			}
		}
	})
}

func (c *SessionController) Credential() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session.Credential
}

func (c *SessionController) Session() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	session := c.session
	session.AccountMemberships = append([]domain.AccountMembership(nil), c.session.AccountMemberships...)
	return session
}

func (c *SessionController) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session.State
}

// CountdownRemaining reports the seconds left before a forced logout.
func (c *SessionController) CountdownRemaining() int {
	return c.countdown.Remaining()
}

// Login is the only way into Authenticated.
func (c *SessionController) Login(ctx context.Context, cmd LoginCommand) error {
	credential := strings.TrimSpace(cmd.Credential)
	if credential == "" {
		return domain.ErrMissingCredential
	}

	identity := cmd.Identity
	if identity == (domain.Identity{}) {
		if fromToken, ok := IdentityFromToken(credential); ok {
			identity = fromToken
		}
	}

	if err := c.login(ctx, credential, identity, cmd); err != nil {
		return err
	}

	if c.channel != nil {
		if err := c.channel.Open(ctx, credential); err != nil {
			c.logger.Warn().Err(err).Msg("realtime.open_failed")
		}
	}

	c.logger.Info().Str("email", identity.Email).Str("role", identity.Role).Msg("session.authenticated")
	c.publish(domain.Event{Kind: domain.EventAuthenticated})
	return nil
}

func (c *SessionController) login(ctx context.Context, credential string, identity domain.Identity, cmd LoginCommand) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	remembered := c.session.Remembered
	storedSecretRef := ""
	if cmd.Remember {
		email := identity.Email
		if email == "" {
			email = remembered.Email
		}
		remembered = domain.RememberedLogin{Email: email, SecretRef: remembered.SecretRef}

		if cmd.RememberSecret != "" {
			if c.secrets == nil {
				return errors.New("secret store is not configured")
			}
			ref := rememberedSecretRef(email)
			if err := c.secrets.Put(ctx, ref, cmd.RememberSecret); err != nil {
				return fmt.Errorf("store remembered secret: %w", err)
			}
			storedSecretRef = ref
			remembered.SecretRef = ref
		}
	}

	next := domain.Session{
		Credential:         credential,
		Identity:           identity,
		AccountMemberships: append([]domain.AccountMembership(nil), cmd.Memberships...),
		RetryCount:         c.session.RetryCount,
		Remembered:         remembered,
		State:              domain.SessionStateAuthenticated,
	}

	if err := c.sessions.Save(ctx, next.Snapshot()); err != nil {
		if storedSecretRef != "" {
			if rollbackErr := c.secrets.Delete(ctx, storedSecretRef); rollbackErr != nil {
				return fmt.Errorf("save session snapshot and rollback remembered secret: %w", errors.Join(err, rollbackErr))
			}
		}
		return fmt.Errorf("save session snapshot: %w", err)
	}

	c.stopCountdownLocked()
	c.session = next
	return nil
}

// RecordServerError feeds a classified error into the retry budget check.
// It reports whether the session moved into SessionExpiring.
func (c *SessionController) RecordServerError(classified domain.ClassifiedError) bool {
	if !classified.IsServerError() {
		return false
	}

	c.mu.Lock()
	if c.session.State == domain.SessionStateSessionExpiring {
		c.mu.Unlock()
		return false
	}

	c.session.LastErrorSeen = classified.Message
	if !c.session.IsAuthenticated() || c.session.RetryCount < c.cfg.MaxRetries {
		c.mu.Unlock()
		return false
	}

	c.session.State = domain.SessionStateSessionExpiring
	c.startCountdownLocked()
	retries := c.session.RetryCount
	c.mu.Unlock()

	c.logger.Warn().
		Int("retry_count", retries).
		Int("countdown", c.cfg.CountdownSeconds).
		Str("last_error", classified.Message).
		Msg("session.expiring")
	c.publish(domain.Event{
		Kind:      domain.EventSessionExpiring,
		Error:     &classified,
		Remaining: c.cfg.CountdownSeconds,
	})
	return true
}

// Retry records a user-initiated retry. Only non-returnable server errors
// count against the budget.
func (c *SessionController) Retry(ctx context.Context, classified domain.ClassifiedError) (int, error) {
	c.mu.Lock()
	if classified.Returnable || !classified.IsServerError() {
		count := c.session.RetryCount
		c.mu.Unlock()
		return count, nil
	}

	next := c.session.RetryCount + 1
	if err := c.retries.Save(ctx, domain.RetryBudget{Count: next, Timestamp: c.clock.Now()}); err != nil {
		count := c.session.RetryCount
		c.mu.Unlock()
		return count, fmt.Errorf("save retry budget: %w", err)
	}
	c.session.RetryCount = next
	c.mu.Unlock()

	c.logger.Debug().Int("retry_count", next).Msg("session.retry_recorded")
	c.publish(domain.Event{Kind: domain.EventRetryRecorded, Error: &classified})
	return next, nil
}

// Teardown cancels and resets the countdown owned by a view that goes away.
// The session stays in SessionExpiring until ResumeCountdown or a logout.
func (c *SessionController) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopCountdownLocked()
}

// ResumeCountdown restarts the countdown for a rebuilt view.
func (c *SessionController) ResumeCountdown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.State != domain.SessionStateSessionExpiring || c.countdown.Running() {
		return false
	}

	c.startCountdownLocked()
	return true
}

func (c *SessionController) Logout(ctx context.Context) error {
	return c.forceLogout(ctx, domain.LogoutReasonUser, func(*domain.Session) bool { return true })
}

// HandleCredentialExpired reacts to a 401/403 from the interceptor.
func (c *SessionController) HandleCredentialExpired(ctx context.Context) error {
	return c.forceLogout(ctx, domain.LogoutReasonCredentialExpired, func(s *domain.Session) bool {
		if !s.IsAuthenticated() {
			return false
		}
		s.CredentialExpired = true
		return true
	})
}

// ExpireSession applies an explicit session-expired flag.
func (c *SessionController) ExpireSession(ctx context.Context) error {
	return c.forceLogout(ctx, domain.LogoutReasonSessionExpired, func(s *domain.Session) bool {
		if !s.IsAuthenticated() {
			return false
		}
		s.SessionExpired = true
		return true
	})
}

// RememberedSecret returns the remembered login and its stored secret.
func (c *SessionController) RememberedSecret(ctx context.Context) (domain.RememberedLogin, string, error) {
	c.mu.Lock()
	remembered := c.session.Remembered
	c.mu.Unlock()

	if remembered.SecretRef == "" || c.secrets == nil {
		return remembered, "", nil
	}

	secret, err := c.secrets.Get(ctx, remembered.SecretRef)
	if err != nil {
		return remembered, "", fmt.Errorf("load remembered secret: %w", err)
	}

	return remembered, secret, nil
}

// Forget drops the remembered login and its secret.
func (c *SessionController) Forget(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	remembered := c.session.Remembered
	if remembered.IsZero() {
		return nil
	}

	if remembered.SecretRef != "" && c.secrets != nil {
		if err := c.secrets.Delete(ctx, remembered.SecretRef); err != nil {
			return fmt.Errorf("delete remembered secret: %w", err)
		}
	}

	next := c.session
	next.Remembered = domain.RememberedLogin{}
	if err := c.sessions.Save(ctx, next.Snapshot()); err != nil {
		return fmt.Errorf("save session snapshot: %w", err)
	}

	c.session = next
	return nil
}

func (c *SessionController) forceLogout(ctx context.Context, reason domain.LogoutReason, apply func(*domain.Session) bool) error {
	c.mu.Lock()
	if !apply(&c.session) {
		c.mu.Unlock()
		return nil
	}
	events, err := c.logoutLocked(ctx, reason)
	c.mu.Unlock()

	c.publish(events...)
	return err
}

// logoutLocked is idempotent: it always leaves the same cleared state and
// only reports a logged-out event when leaving an authenticated session.
func (c *SessionController) logoutLocked(ctx context.Context, reason domain.LogoutReason) ([]domain.Event, error) {
	wasAuthenticated := c.session.IsAuthenticated()

	c.stopCountdownLocked()
	c.session = c.session.Cleared()

	var errs error
	if err := c.retries.Clear(ctx); err != nil {
		errs = errors.Join(errs, fmt.Errorf("clear retry budget: %w", err))
	}
	if err := c.sessions.Save(ctx, c.session.Snapshot()); err != nil {
		errs = errors.Join(errs, fmt.Errorf("save session snapshot: %w", err))
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("close realtime channel: %w", err))
		}
	}

	if !wasAuthenticated {
		return nil, errs
	}

	c.logger.Info().Str("reason", string(reason)).Msg("session.logged_out")
	return []domain.Event{{Kind: domain.EventLoggedOut, Reason: reason}}, errs
}

func (c *SessionController) startCountdownLocked() {
	c.countdownGen++
	gen := c.countdownGen

	c.countdown.Start(
		func(remaining int) { c.onCountdownTick(gen, remaining) },
		func() { c.onCountdownZero(gen) },
	)
}

func (c *SessionController) stopCountdownLocked() {
	c.countdownGen++
	c.countdown.Cancel()
}

func (c *SessionController) onCountdownTick(gen uint64, remaining int) {
	c.mu.Lock()
	current := gen == c.countdownGen && c.session.State == domain.SessionStateSessionExpiring
	c.mu.Unlock()

	if current {
		c.publish(domain.Event{Kind: domain.EventCountdownTick, Remaining: remaining})
	}
}

// onCountdownZero forces the logout unless the countdown was cancelled or
// replaced in the meantime.
func (c *SessionController) onCountdownZero(gen uint64) {
	c.mu.Lock()
	if gen != c.countdownGen || c.session.State != domain.SessionStateSessionExpiring {
		c.mu.Unlock()
		return
	}
	events, err := c.logoutLocked(context.Background(), domain.LogoutReasonCountdown)
	c.mu.Unlock()

	if err != nil {
		c.logger.Error().Err(err).Msg("session.countdown.logout_failed")
	}
	c.publish(events...)
}

func (c *SessionController) publish(events ...domain.Event) {
	if c.events == nil {
		return
	}

	for _, event := range events {
		c.events.Publish(event)
	}
}

func rememberedSecretRef(email string) string {
	key := strings.TrimSpace(strings.ToLower(email))
	key = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	if key == "" {
		key = "default"
	}

	return rememberedSecretPrefix + key
}

package toml

import (
	"context"
	"sync"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/bnema/adminkit/internal/ports"
	"github.com/spf13/viper"
)

const (
	sessionPathKey  = "session.path"
	sessionFileName = "session.toml"
	sessionLabel    = "session"
)

// SessionRepository stores the auth snapshot in a single TOML file.
type SessionRepository struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(cfg *viper.Viper) (*SessionRepository, error) {
	path, err := resolvePath(cfg, sessionPathKey, sessionFileName)
	if err != nil {
		return nil, err
	}

	return &SessionRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *SessionRepository) Path() string {
	return r.path
}

func (r *SessionRepository) Load(ctx context.Context) (domain.SessionSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionSnapshot{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if file.Session == nil {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}

	return fromSessionSchema(*file.Session), nil
}

func (r *SessionRepository) Save(ctx context.Context, snapshot domain.SessionSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	encoded := toSessionSchema(snapshot)
	file := sessionFileSchema{Session: &encoded}
	file.applyDefaults()

	return writeTOMLFile(r.path, sessionLabel, file)
}

func (r *SessionRepository) readSchema() (sessionFileSchema, error) {
	var file sessionFileSchema
	found, err := readTOMLFile(r.path, sessionLabel, &file)
	if err != nil || !found {
		return sessionFileSchema{}, err
	}
	if err := file.validateVersion(); err != nil {
		return sessionFileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func toSessionSchema(snapshot domain.SessionSnapshot) sessionSchema {
	memberships := make([]membershipSchema, 0, len(snapshot.AccountMemberships))
	for _, membership := range snapshot.AccountMemberships {
		memberships = append(memberships, membershipSchema{ID: membership.ID, Name: membership.Name})
	}

	var remembered *rememberedSchema
	if !snapshot.Remembered.IsZero() {
		remembered = &rememberedSchema{
			Email:     snapshot.Remembered.Email,
			SecretRef: snapshot.Remembered.SecretRef,
		}
	}

	return sessionSchema{
		Credential:        snapshot.Credential,
		SessionExpired:    snapshot.SessionExpired,
		CredentialExpired: snapshot.CredentialExpired,
		Identity: identitySchema{
			Email: snapshot.Identity.Email,
			Name:  snapshot.Identity.Name,
			Role:  snapshot.Identity.Role,
		},
		Memberships: memberships,
		Remembered:  remembered,
	}
}

func fromSessionSchema(schema sessionSchema) domain.SessionSnapshot {
	memberships := make([]domain.AccountMembership, 0, len(schema.Memberships))
	for _, membership := range schema.Memberships {
		memberships = append(memberships, domain.AccountMembership{ID: membership.ID, Name: membership.Name})
	}

	snapshot := domain.SessionSnapshot{
		Credential:         schema.Credential,
		SessionExpired:     schema.SessionExpired,
		CredentialExpired:  schema.CredentialExpired,
		AccountMemberships: memberships,
		Identity: domain.Identity{
			Email: schema.Identity.Email,
			Name:  schema.Identity.Name,
			Role:  schema.Identity.Role,
		},
	}
	if schema.Remembered != nil {
		snapshot.Remembered = domain.RememberedLogin{
			Email:     schema.Remembered.Email,
			SecretRef: schema.Remembered.SecretRef,
		}
	}

	return snapshot
}

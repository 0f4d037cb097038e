package toml

import "fmt"

const currentSchemaVersion = 1

type sessionFileSchema struct {
	Version int            `toml:"version"`
	Session *sessionSchema `toml:"session,omitempty"`
}

func (s *sessionFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s sessionFileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type sessionSchema struct {
	Credential        string             `toml:"credential"`
	SessionExpired    bool               `toml:"session_expired"`
	CredentialExpired bool               `toml:"credential_expired"`
	Identity          identitySchema     `toml:"identity"`
	Memberships       []membershipSchema `toml:"memberships,omitempty"`
	Remembered        *rememberedSchema  `toml:"remembered,omitempty"`
}

type identitySchema struct {
	Email string `toml:"email,omitempty"`
	Name  string `toml:"name,omitempty"`
	Role  string `toml:"role,omitempty"`
}

type membershipSchema struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

type rememberedSchema struct {
	Email     string `toml:"email"`
	SecretRef string `toml:"secret_ref,omitempty"`
}

type retryBudgetFileSchema struct {
	Version int `toml:"version"`
	Count   int `toml:"count"`
	// Timestamp is Unix milliseconds of the last write.
	Timestamp int64 `toml:"timestamp"`
}

func (s *retryBudgetFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s retryBudgetFileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported retry budget schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

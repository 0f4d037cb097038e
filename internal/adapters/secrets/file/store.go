// Package file keeps remembered-login secrets as individual files under a
// private directory, one file per secret reference.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/bnema/adminkit/internal/ports"
	"github.com/spf13/viper"
)

const (
	vaultDirMode   = 0o700
	secretFileMode = 0o600

	secretsPathKey = "secrets.path"
)

type Vault struct {
	root string
	mu   sync.RWMutex
}

var _ ports.SecretStore = (*Vault)(nil)

func NewVault(root string) *Vault {
	return &Vault{root: filepath.Clean(root)}
}

// NewVaultFromConfig places the vault at secrets.path, defaulting to
// ~/.adminkit/secrets.
func NewVaultFromConfig(cfg *viper.Viper) (*Vault, error) {
	root := ""
	if cfg != nil {
		root = strings.TrimSpace(cfg.GetString(secretsPathKey))
	}
	if root == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		root = filepath.Join(homeDir, ".adminkit", "secrets")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve secrets path: %w", err)
	}

	return NewVault(absRoot), nil
}

func (v *Vault) Root() string {
	return v.root
}

func (v *Vault) Put(ctx context.Context, ref string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := v.pathForRef(ref)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), vaultDirMode); err != nil {
		return fmt.Errorf("create vault directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), ".secret-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp secret %q: %w", ref, err)
	}
	tempName := tempFile.Name()
	defer func() { _ = os.Remove(tempName) }()

	if err := tempFile.Chmod(secretFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp secret %q: %w", ref, err)
	}
	if _, err := tempFile.WriteString(value); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write secret %q: %w", ref, err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp secret %q: %w", ref, err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace secret %q: %w", ref, err)
	}

	return nil
}

func (v *Vault) Get(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := v.pathForRef(ref)
	if err != nil {
		return "", err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("secret %q: %w", ref, domain.ErrSecretNotFound)
		}
		return "", fmt.Errorf("read secret %q: %w", ref, err)
	}

	return string(data), nil
}

// Delete removes the secret. A missing secret is not an error.
func (v *Vault) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := v.pathForRef(ref)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete secret %q: %w", ref, err)
	}

	return nil
}

func (v *Vault) pathForRef(ref string) (string, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return "", errors.New("secret reference is empty")
	}

	cleaned := filepath.Clean(trimmed)
	if filepath.IsAbs(cleaned) || cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid secret reference %q", ref)
	}

	return filepath.Join(v.root, cleaned), nil
}

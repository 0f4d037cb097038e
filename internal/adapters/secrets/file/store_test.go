package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultRejectsInvalidRefs(t *testing.T) {
	t.Parallel()

	vault := NewVault(t.TempDir())
	testCases := []struct {
		name    string
		ref     string
		wantErr string
	}{
		{name: "empty", ref: "", wantErr: "secret reference is empty"},
		{name: "whitespace", ref: "   ", wantErr: "secret reference is empty"},
		{name: "absolute", ref: "/etc/passwd", wantErr: "invalid secret reference"},
		{name: "parent", ref: "..", wantErr: "invalid secret reference"},
		{name: "traversal", ref: "../escape", wantErr: "invalid secret reference"},
		{name: "nested traversal", ref: "remembered/../../escape", wantErr: "invalid secret reference"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := vault.Put(context.Background(), tc.ref, "value")
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestVaultPutGetRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	vault := NewVault(root)
	ref := "remembered/ada@example.com"

	require.NoError(t, vault.Put(context.Background(), ref, "hunter2"))
	require.NoError(t, vault.Put(context.Background(), ref, "hunter3"))

	got, err := vault.Get(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "hunter3", got)

	info, err := os.Stat(filepath.Join(root, ref))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(secretFileMode), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Join(root, "remembered"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestVaultGetMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	_, err := NewVault(t.TempDir()).Get(context.Background(), "remembered/nobody")
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestVaultDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	vault := NewVault(t.TempDir())
	ref := "remembered/ada@example.com"
	require.NoError(t, vault.Put(context.Background(), ref, "hunter2"))

	require.NoError(t, vault.Delete(context.Background(), ref))
	require.NoError(t, vault.Delete(context.Background(), ref))

	_, err := vault.Get(context.Background(), ref)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestNewVaultFromConfig(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	vault, err := NewVaultFromConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, ".adminkit", "secrets"), vault.Root())

	custom := filepath.Join(t.TempDir(), "vault")
	config := viper.New()
	config.Set("secrets.path", custom)
	vault, err = NewVaultFromConfig(config)
	require.NoError(t, err)
	assert.Equal(t, custom, vault.Root())
}

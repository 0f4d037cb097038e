package tagrules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `version: 1
rules:
  users: [Users, Users, Roles]
  accounts:
    get: [Accounts]
    DELETE: [Accounts, Users]
    default: [Accounts]
  single: Audit
  audit: ~
`

func TestParseRuleKinds(t *testing.T) {
	rules, err := Parse([]byte(sampleRules))
	require.NoError(t, err)

	assert.Equal(t, []string{"Roles", "Users"}, rules.TagsFor("users", "PATCH"))
	assert.Equal(t, []string{"Accounts"}, rules.TagsFor("accounts", "GET"))
	assert.Equal(t, []string{"Accounts", "Users"}, rules.TagsFor("accounts", "delete"))
	assert.Equal(t, []string{"Accounts"}, rules.TagsFor("accounts", "POST"))
	assert.Equal(t, []string{"Audit"}, rules.TagsFor("single", "GET"))
	assert.Empty(t, rules.TagsFor("audit", "GET"))
	assert.Empty(t, rules.TagsFor("unknown", "GET"))
}

func TestParseRejectsUnknownVersion(t *testing.T) {
	_, err := Parse([]byte("version: 2\nrules: {}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported tag rules schema version 2")
}

func TestParseRejectsInvalidRule(t *testing.T) {
	_, err := Parse([]byte("rules:\n  users:\n    GET: {nested: true}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "users"`)
}

func TestLoadFallsBackToDefaultWhenMissing(t *testing.T) {
	rules, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), rules)
	assert.Equal(t, []string{"ProjectSettings", "Projects"}, rules.TagsForPath("projects/settings/42", "PUT"))
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o600))

	rules, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, rules, 4)
}

func TestLoadReportsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [unterminated"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing tag rules")
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testTagRules() TagRules {
	return TagRules{
		"users": FlatRule("Users", "Dashboard"),
		"orders": VerbRule(map[string][]string{
			"post":      {"Orders", "Dashboard"},
			"DELETE":    {"Orders"},
			DefaultVerb: {"Orders"},
		}),
		"audit": VerbRule(map[string][]string{
			"GET": {"Audit"},
		}),
		"roles/admin": FlatRule("AdminRoles"),
	}
}

func TestTagsForUnknownTypeIsEmpty(t *testing.T) {
	t.Parallel()

	got := testTagRules().TagsFor("invoices", "POST")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTagsForFlatRuleIgnoresVerb(t *testing.T) {
	t.Parallel()

	rules := testTagRules()
	assert.Equal(t, []string{"Dashboard", "Users"}, rules.TagsFor("users", "GET"))
	assert.Equal(t, []string{"Dashboard", "Users"}, rules.TagsFor("users", "PATCH"))
}

func TestTagsForPerVerbRule(t *testing.T) {
	t.Parallel()

	rules := testTagRules()
	assert.Equal(t, []string{"Dashboard", "Orders"}, rules.TagsFor("orders", "POST"))
	assert.Equal(t, []string{"Orders"}, rules.TagsFor("orders", "delete"))
	assert.Equal(t, []string{"Orders"}, rules.TagsFor("orders", "PUT"), "falls back to default")
}

func TestTagsForPerVerbRuleWithoutDefault(t *testing.T) {
	t.Parallel()

	assert.Empty(t, testTagRules().TagsFor("audit", "POST"))
}

func TestTagsForPathTruncatesToTwoSegments(t *testing.T) {
	t.Parallel()

	rules := testTagRules()
	assert.Equal(t, []string{"AdminRoles"}, rules.TagsForPath("/roles/admin/permissions/9", "PUT"))
	assert.Equal(t, []string{"AdminRoles"}, rules.TagsForPath("roles/admin?expand=1", "GET"))
}

func TestHierarchicalKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a/b", HierarchicalKey("a/b/c/d"))
	assert.Equal(t, "a", HierarchicalKey("/a/"))
	assert.Equal(t, "a/b", HierarchicalKey("a//b/c"))
	assert.Equal(t, "", HierarchicalKey(""))
}

// Package tagrules reads the cache tag rule table from YAML.
//
// A rule is either a list (flat tags for every verb), a mapping from HTTP
// verb to tags with an optional "default" entry, or null for a type that
// provides and invalidates nothing:
//
//	version: 1
//	rules:
//	  users: [Users]
//	  accounts:
//	    GET: [Accounts]
//	    DELETE: [Accounts, Users]
//	    default: [Accounts]
//	  audit: ~
package tagrules

import (
	"errors"
	"fmt"
	"os"

	"github.com/bnema/adminkit/internal/domain"
	"gopkg.in/yaml.v3"
)

const currentSchemaVersion = 1

type document struct {
	Version int                  `yaml:"version"`
	Rules   map[string]yaml.Node `yaml:"rules"`
}

// Load reads the rule table at path. An empty path or a missing file yields
// the built-in table.
func Load(path string) (domain.TagRules, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading tag rules: %w", err)
	}

	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing tag rules %s: %w", path, err)
	}

	return rules, nil
}

func Parse(data []byte) (domain.TagRules, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.Version == 0 {
		doc.Version = currentSchemaVersion
	}
	if doc.Version != currentSchemaVersion {
		return nil, fmt.Errorf("unsupported tag rules schema version %d", doc.Version)
	}

	rules := make(domain.TagRules, len(doc.Rules))
	for resourceType, node := range doc.Rules {
		rule, err := decodeRule(&node)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", resourceType, err)
		}
		rules[resourceType] = rule
	}

	return rules, nil
}

func decodeRule(node *yaml.Node) (domain.TagRule, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		var tags []string
		if err := node.Decode(&tags); err != nil {
			return domain.TagRule{}, err
		}
		return domain.FlatRule(tags...), nil
	case yaml.MappingNode:
		var byVerb map[string][]string
		if err := node.Decode(&byVerb); err != nil {
			return domain.TagRule{}, err
		}
		return domain.VerbRule(byVerb), nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return domain.FlatRule(), nil
		}
		var tag string
		if err := node.Decode(&tag); err != nil {
			return domain.TagRule{}, err
		}
		return domain.FlatRule(tag), nil
	default:
		return domain.TagRule{}, fmt.Errorf("unsupported rule kind at line %d", node.Line)
	}
}

// Default is the built-in rule table for the admin API resources.
func Default() domain.TagRules {
	return domain.TagRules{
		"users": domain.VerbRule(map[string][]string{
			"GET":              {"Users"},
			"DELETE":           {"Users", "AccountMemberships"},
			domain.DefaultVerb: {"Users"},
		}),
		"accounts": domain.VerbRule(map[string][]string{
			"GET":              {"Accounts"},
			"DELETE":           {"Accounts", "AccountMemberships"},
			domain.DefaultVerb: {"Accounts"},
		}),
		"account-memberships": domain.FlatRule("AccountMemberships"),
		"roles":               domain.FlatRule("Roles", "Users"),
		"projects":            domain.FlatRule("Projects"),
		"projects/settings":   domain.FlatRule("ProjectSettings", "Projects"),
		"notifications":       domain.FlatRule("Notifications"),
		"uploads":             domain.FlatRule("Uploads"),
	}
}

package domain

import (
	"sort"
	"strings"
)

// DefaultVerb is the per-verb fallback key of a tag rule.
const DefaultVerb = "default"

// TagRule is either a flat tag set (ByVerb nil) or a verb to tag-set map
// with an optional "default" entry.
type TagRule struct {
	Tags   []string
	ByVerb map[string][]string
}

func FlatRule(tags ...string) TagRule {
	return TagRule{Tags: tags}
}

func VerbRule(byVerb map[string][]string) TagRule {
	normalized := make(map[string][]string, len(byVerb))
	for verb, tags := range byVerb {
		normalized[normalizeVerb(verb)] = tags
	}

	return TagRule{ByVerb: normalized}
}

func (r TagRule) IsPerVerb() bool {
	return r.ByVerb != nil
}

func (r TagRule) resolve(verb string) []string {
	if !r.IsPerVerb() {
		return r.Tags
	}

	if tags, ok := r.ByVerb[normalizeVerb(verb)]; ok {
		return tags
	}

	return r.ByVerb[DefaultVerb]
}

// TagRules maps a resource type to its rule.
type TagRules map[string]TagRule

// TagsFor resolves the tags provided (reads) or invalidated (writes) for a
// resource type and verb. An unknown type resolves to no tags, which callers
// treat as nothing to invalidate.
func (r TagRules) TagsFor(resourceType, verb string) []string {
	rule, ok := r[strings.TrimSpace(resourceType)]
	if !ok {
		return []string{}
	}

	return uniqueTags(rule.resolve(verb))
}

// TagsForPath resolves tags for a hierarchical type whose identifier is
// embedded in the path, keyed on its first two segments.
func (r TagRules) TagsForPath(path, verb string) []string {
	return r.TagsFor(HierarchicalKey(path), verb)
}

// HierarchicalKey truncates a path-like resource type to its first two segments.
func HierarchicalKey(path string) string {
	trimmed := strings.TrimSpace(path)
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	trimmed = strings.Trim(trimmed, "/")

	segments := make([]string, 0, 2)
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
		if len(segments) == 2 {
			break
		}
	}

	return strings.Join(segments, "/")
}

func normalizeVerb(verb string) string {
	trimmed := strings.TrimSpace(verb)
	if strings.EqualFold(trimmed, DefaultVerb) {
		return DefaultVerb
	}

	return strings.ToUpper(trimmed)
}

func uniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)

	return out
}

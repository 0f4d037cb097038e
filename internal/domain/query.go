package domain

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

type IDPlacement int

const (
	IDAsQueryKey IDPlacement = iota
	IDAsPathSegment
)

// BuilderVariant captures the two behaviors that differ between call sites:
// where a bare id goes, and whether a search restarts pagination.
type BuilderVariant struct {
	Name                string
	IDPlacement         IDPlacement
	ResetOffsetOnSearch bool
}

var (
	StandardVariant    = BuilderVariant{Name: "standard", IDPlacement: IDAsQueryKey}
	ByActionVariant    = BuilderVariant{Name: "by-action", IDPlacement: IDAsQueryKey, ResetOffsetOnSearch: true}
	PathSegmentVariant = BuilderVariant{Name: "path-segment", IDPlacement: IDAsPathSegment}
)

func ParseBuilderVariant(raw string) (BuilderVariant, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", StandardVariant.Name:
		return StandardVariant, nil
	case ByActionVariant.Name:
		return ByActionVariant, nil
	case PathSegmentVariant.Name:
		return PathSegmentVariant, nil
	default:
		return BuilderVariant{}, fmt.Errorf("unsupported builder variant %q", raw)
	}
}

// Build turns a descriptor into the canonical request for an operation.
// It has no side effects.
func Build(op Operation, desc ResourceDescriptor, variant BuilderVariant) (Request, error) {
	endpoint, err := BuildURL(desc, variant)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Method:       op.Method(desc.Action),
		URL:          endpoint,
		ResourceType: desc.Type,
		Upload:       desc.Upload,
	}
	if op.IsMutation() && len(desc.Body) > 0 {
		req.Body = append(req.Body, desc.Body...)
	}

	return req, nil
}

// BuildURL assembles the request URL. Segment order matters: each optional
// segment joins with "?" or "&" depending on whether an earlier one was emitted.
func BuildURL(desc ResourceDescriptor, variant BuilderVariant) (string, error) {
	if err := desc.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(desc.BasePath())

	hasQuery := strings.Contains(desc.BasePath(), "?")
	join := func() string {
		if hasQuery {
			return "&"
		}
		hasQuery = true
		return "?"
	}

	if id := strings.TrimSpace(desc.ID); id != "" {
		switch {
		case strings.TrimSpace(desc.IDFieldName) != "":
			b.WriteString(join() + url.QueryEscape(strings.TrimSpace(desc.IDFieldName)) + "=" + url.QueryEscape(id))
		case variant.IDPlacement == IDAsPathSegment:
			b.WriteString("/" + url.PathEscape(id))
		default:
			b.WriteString(join() + "id=" + url.QueryEscape(id))
		}
	}

	if desc.Offset != nil && desc.Limit != nil {
		offset := *desc.Offset
		if variant.ResetOffsetOnSearch && desc.Search != "" {
			offset = 0
		}
		b.WriteString(join() + "offset=" + strconv.Itoa(offset) + "&limit=" + strconv.Itoa(*desc.Limit))
	}

	if desc.Search != "" {
		b.WriteString(join() + "search=" + url.QueryEscape(desc.Search))
	}

	if desc.SortField != "" && desc.SortDirection != "" {
		// Always "&": sorting never leads the query string in practice.
		b.WriteString("&sort=" + url.QueryEscape(desc.SortField) + "&order=" + url.QueryEscape(string(desc.SortDirection)))
		hasQuery = true
	}

	if filters := RenderFilters(desc.Filters); filters != "" {
		b.WriteString(join() + "filters=" + filters)
	}

	if raw := strings.TrimLeft(strings.TrimSpace(desc.RawQuery), "?&"); raw != "" {
		b.WriteString(join() + raw)
	}

	return b.String(), nil
}

// RenderFilters renders filter entries as key=value joined by ",". List
// values join their elements with "|"; nil values are dropped entirely.
func RenderFilters(filters []Filter) string {
	parts := make([]string, 0, len(filters))
	for _, filter := range filters {
		key := strings.TrimSpace(filter.Key)
		if key == "" {
			continue
		}

		value, ok := renderFilterValue(filter.Value)
		if !ok {
			continue
		}

		parts = append(parts, url.QueryEscape(key)+"="+value)
	}

	return strings.Join(parts, ",")
}

func renderFilterValue(value any) (string, bool) {
	if value == nil {
		return "", false
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "", false
		}
		elems := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, ok := renderFilterValue(rv.Index(i).Interface())
			if !ok {
				continue
			}
			elems = append(elems, elem)
		}
		return strings.Join(elems, "|"), true
	default:
		return url.QueryEscape(fmt.Sprint(rv.Interface())), true
	}
}

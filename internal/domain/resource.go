package domain

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

func ParseSortDirection(raw string) (SortDirection, error) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return "", nil
	case SortAscending:
		return SortAscending, nil
	case SortDescending:
		return SortDescending, nil
	default:
		return "", fmt.Errorf("unsupported sort direction %q", raw)
	}
}

// Filter is one filter entry. Value may be a scalar, a slice of scalars, or
// nil; nil entries are dropped when the query is rendered.
type Filter struct {
	Key   string
	Value any
}

// ActionEdit selects PUT for an upsert; any other action creates.
const ActionEdit = "edit"

// ResourceDescriptor declares what to fetch or mutate. Type (or URL as an
// explicit override path) is mandatory; every other field is optional and
// composes independently into the final request.
type ResourceDescriptor struct {
	Type          string
	URL           string
	ID            string
	IDFieldName   string
	Offset        *int
	Limit         *int
	Search        string
	SortField     string
	SortDirection SortDirection
	Filters       []Filter
	RawQuery      string
	Action        string
	Body          json.RawMessage
	// Upload marks a file-upload mutation: no explicit content type is sent.
	Upload bool
}

// Page sets both pagination fields.
func (d ResourceDescriptor) Page(offset, limit int) ResourceDescriptor {
	d.Offset = &offset
	d.Limit = &limit
	return d
}

func (d ResourceDescriptor) BasePath() string {
	if path := strings.TrimSpace(d.URL); path != "" {
		return path
	}

	return strings.TrimSpace(d.Type)
}

func (d ResourceDescriptor) Validate() error {
	if d.BasePath() == "" {
		return ErrMissingResource
	}

	return nil
}

type Operation string

const (
	OperationFetch   Operation = "fetch"
	OperationCreate  Operation = "create"
	OperationReplace Operation = "replace"
	OperationUpdate  Operation = "update"
	OperationDelete  Operation = "delete"
	OperationUpsert  Operation = "upsert"
)

// Method returns the HTTP verb fixed for the operation kind. Upsert picks
// PUT for the edit action and POST otherwise.
func (o Operation) Method(action string) string {
	switch o {
	case OperationCreate:
		return http.MethodPost
	case OperationReplace:
		return http.MethodPut
	case OperationUpdate:
		return http.MethodPatch
	case OperationDelete:
		return http.MethodDelete
	case OperationUpsert:
		if action == ActionEdit {
			return http.MethodPut
		}
		return http.MethodPost
	default:
		return http.MethodGet
	}
}

func (o Operation) IsMutation() bool {
	return o != OperationFetch && o != ""
}

// Request is the canonical request produced by the query builder.
type Request struct {
	Method       string
	URL          string
	ResourceType string
	Body         json.RawMessage
	Upload       bool
}

// Result is what consumers receive: either Data or an already classified Error.
type Result struct {
	Status int
	Data   json.RawMessage
	Error  *ClassifiedError
}

func (r Result) OK() bool {
	return r.Error == nil
}

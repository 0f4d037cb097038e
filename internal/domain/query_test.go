package domain

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURLAssemblesSegmentsInOrder(t *testing.T) {
	t.Parallel()

	desc := ResourceDescriptor{
		Type:          "users",
		ID:            "42",
		IDFieldName:   "userId",
		Search:        "ann",
		SortField:     "name",
		SortDirection: SortAscending,
		Filters: []Filter{
			{Key: "role", Value: "admin"},
			{Key: "status", Value: []string{"active", "locked"}},
		},
		RawQuery: "include=groups",
	}.Page(20, 10)

	got, err := BuildURL(desc, StandardVariant)
	require.NoError(t, err)
	assert.Equal(t, "users?userId=42&offset=20&limit=10&search=ann&sort=name&order=asc&filters=role=admin,status=active|locked&include=groups", got)
}

func TestBuildURLUsesCallerOffsetWithoutSearch(t *testing.T) {
	t.Parallel()

	for _, variant := range []BuilderVariant{StandardVariant, ByActionVariant, PathSegmentVariant} {
		got, err := BuildURL(ResourceDescriptor{Type: "orders"}.Page(30, 15), variant)
		require.NoError(t, err)
		assert.Equal(t, "orders?offset=30&limit=15", got, variant.Name)
	}
}

func TestBuildURLByActionForcesOffsetZeroOnSearch(t *testing.T) {
	t.Parallel()

	desc := ResourceDescriptor{Type: "orders", Search: "late"}.Page(30, 15)

	byAction, err := BuildURL(desc, ByActionVariant)
	require.NoError(t, err)
	assert.Equal(t, "orders?offset=0&limit=15&search=late", byAction)

	standard, err := BuildURL(desc, StandardVariant)
	require.NoError(t, err)
	assert.Equal(t, "orders?offset=30&limit=15&search=late", standard)
}

func TestBuildURLSkipsPaginationUnlessBothBoundsSet(t *testing.T) {
	t.Parallel()

	offset := 10
	got, err := BuildURL(ResourceDescriptor{Type: "orders", Offset: &offset, Search: "x"}, StandardVariant)
	require.NoError(t, err)
	assert.Equal(t, "orders?search=x", got)
}

func TestBuildURLIdentityPlacement(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		desc    ResourceDescriptor
		variant BuilderVariant
		want    string
	}{
		{name: "bare id as query key", desc: ResourceDescriptor{Type: "users", ID: "7"}, variant: StandardVariant, want: "users?id=7"},
		{name: "id field name", desc: ResourceDescriptor{Type: "users", ID: "7", IDFieldName: "uid"}, variant: StandardVariant, want: "users?uid=7"},
		{name: "path segment", desc: ResourceDescriptor{Type: "users", ID: "7"}, variant: PathSegmentVariant, want: "users/7"},
		{name: "path segment then pagination", desc: ResourceDescriptor{Type: "users", ID: "7"}.Page(0, 5), variant: PathSegmentVariant, want: "users/7?offset=0&limit=5"},
		{name: "url override", desc: ResourceDescriptor{Type: "users", URL: "admin/users", ID: "7"}, variant: StandardVariant, want: "admin/users?id=7"},
		{name: "override with query", desc: ResourceDescriptor{URL: "reports?year=2026", Search: "q"}, variant: StandardVariant, want: "reports?year=2026&search=q"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BuildURL(tc.desc, tc.variant)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuildURLSortRequiresFieldAndDirection(t *testing.T) {
	t.Parallel()

	got, err := BuildURL(ResourceDescriptor{Type: "users", ID: "1", SortField: "name"}, StandardVariant)
	require.NoError(t, err)
	assert.Equal(t, "users?id=1", got)

	got, err = BuildURL(ResourceDescriptor{Type: "users", ID: "1", SortField: "name", SortDirection: SortDescending}, StandardVariant)
	require.NoError(t, err)
	assert.Equal(t, "users?id=1&sort=name&order=desc", got)
}

func TestBuildURLRequiresTypeOrOverride(t *testing.T) {
	t.Parallel()

	_, err := BuildURL(ResourceDescriptor{Search: "x"}, StandardVariant)
	require.ErrorIs(t, err, ErrMissingResource)
}

func TestRenderFiltersDropsNilAndJoinsLists(t *testing.T) {
	t.Parallel()

	var missing *string
	got := RenderFilters([]Filter{
		{Key: "a", Value: nil},
		{Key: "b", Value: []int{1, 2, 3}},
		{Key: "c", Value: missing},
		{Key: "d", Value: true},
		{Key: "e", Value: []any{"x", nil, "y"}},
	})

	assert.Equal(t, "b=1|2|3,d=true,e=x|y", got)
}

func TestRenderFiltersEmptyWhenAllDropped(t *testing.T) {
	t.Parallel()

	got, err := BuildURL(ResourceDescriptor{Type: "users", Filters: []Filter{{Key: "a"}}}, StandardVariant)
	require.NoError(t, err)
	assert.Equal(t, "users", got)
}

func TestBuildSelectsMethodPerOperation(t *testing.T) {
	t.Parallel()

	desc := ResourceDescriptor{Type: "users", Body: []byte(`{"name":"a"}`)}
	testCases := []struct {
		op     Operation
		action string
		want   string
	}{
		{op: OperationFetch, want: http.MethodGet},
		{op: OperationCreate, want: http.MethodPost},
		{op: OperationReplace, want: http.MethodPut},
		{op: OperationUpdate, want: http.MethodPatch},
		{op: OperationDelete, want: http.MethodDelete},
		{op: OperationUpsert, action: ActionEdit, want: http.MethodPut},
		{op: OperationUpsert, action: "create", want: http.MethodPost},
		{op: OperationUpsert, want: http.MethodPost},
	}

	for _, tc := range testCases {
		d := desc
		d.Action = tc.action
		req, err := Build(tc.op, d, StandardVariant)
		require.NoError(t, err)
		assert.Equal(t, tc.want, req.Method, "%s/%s", tc.op, tc.action)
		assert.Equal(t, "users", req.ResourceType)
	}

	fetch, err := Build(OperationFetch, desc, StandardVariant)
	require.NoError(t, err)
	assert.Nil(t, fetch.Body)
}

func TestParseBuilderVariant(t *testing.T) {
	t.Parallel()

	got, err := ParseBuilderVariant("by-action")
	require.NoError(t, err)
	assert.Equal(t, ByActionVariant, got)

	got, err = ParseBuilderVariant("")
	require.NoError(t, err)
	assert.Equal(t, StandardVariant, got)

	_, err = ParseBuilderVariant("merged")
	require.Error(t, err)
}

package query

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogshouse/dogs-api/pkg/apperror"
)

func testBuilder() *Builder {
	return NewBuilder([]Field{
		{Name: "name", Column: "name"},
		{Name: "breedType", Column: "breed_type"},
		{Name: "popularity", Column: "popularity", Kind: Numeric},
		{Name: "intelligence", Column: "intelligence", Kind: Numeric},
		{Name: "createdAt", Column: "created_at", Kind: Time},
	}, "createdAt")
}

func parse(t *testing.T, raw string) Request {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	req, err := testBuilder().Parse(values)
	require.NoError(t, err)
	return req
}

func TestParseFilterOperators(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		op    Op
		value any
	}{
		{"Equality", "name=Rex", OpEq, "Rex"},
		{"Gte", "popularity[gte]=5", OpGte, 5.0},
		{"Gt", "popularity[gt]=5", OpGt, 5.0},
		{"Lte", "popularity[lte]=5", OpLte, 5.0},
		{"Lt", "popularity[lt]=5", OpLt, 5.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := parse(t, tt.raw)
			require.Len(t, req.Conditions(), 1)
			assert.Equal(t, tt.op, req.Conditions()[0].Op)
			assert.Equal(t, tt.value, req.Conditions()[0].Value)
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		msg  string
	}{
		{"Filter", "secret=1", "Cannot filter by secret"},
		{"FilterBracket", "secret[gte]=1", "Cannot filter by secret"},
		{"Sort", "sort=secret", "Cannot sort by secret"},
		{"Projection", "fields=secret", "Cannot select secret"},
		{"UnknownOperator", "popularity[like]=1", "Unknown filter operator like"},
		{"MalformedBracket", "popularity[gte=1", "Malformed filter key popularity[gte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.raw)
			require.NoError(t, err)
			_, err = testBuilder().Parse(values)
			require.Error(t, err)
			appErr, operational := apperror.Normalize(err)
			assert.True(t, operational)
			assert.Equal(t, 400, appErr.Code)
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}
}

func TestParseCoercion(t *testing.T) {
	t.Run("NumericRejectsText", func(t *testing.T) {
		values, _ := url.ParseQuery("popularity[gte]=high")
		_, err := testBuilder().Parse(values)
		require.Error(t, err)
		appErr, _ := apperror.Normalize(err)
		assert.Equal(t, 400, appErr.Code)
	})

	t.Run("TimeAcceptsDate", func(t *testing.T) {
		req := parse(t, "createdAt[gte]=2024-01-15")
		require.Len(t, req.Conditions(), 1)
		ts, ok := req.Conditions()[0].Value.(time.Time)
		require.True(t, ok)
		assert.Equal(t, 2024, ts.Year())
	})
}

func TestParseSort(t *testing.T) {
	t.Run("DefaultIsNewestFirst", func(t *testing.T) {
		req := parse(t, "")
		require.Len(t, req.SortKeys(), 1)
		assert.Equal(t, SortKey{Column: "created_at", Desc: true}, req.SortKeys()[0])
	})

	t.Run("PrefixControlsDirection", func(t *testing.T) {
		req := parse(t, "sort=-popularity,name")
		require.Len(t, req.SortKeys(), 2)
		assert.Equal(t, SortKey{Column: "popularity", Desc: true}, req.SortKeys()[0])
		assert.Equal(t, SortKey{Column: "name", Desc: false}, req.SortKeys()[1])
	})
}

func TestParseProjection(t *testing.T) {
	t.Run("DefaultExcludesCreationTime", func(t *testing.T) {
		req := parse(t, "")
		assert.Equal(t, []string{"id", "name", "breedType", "popularity", "intelligence"}, req.Fields())
	})

	t.Run("ExplicitAlwaysIncludesID", func(t *testing.T) {
		req := parse(t, "fields=name,popularity")
		assert.Equal(t, []string{"id", "name", "popularity"}, req.Fields())
	})
}

func TestParsePageAndLimitDefaults(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		page  int
		limit int
	}{
		{"Missing", "", 1, 10},
		{"Explicit", "page=3&limit=25", 3, 25},
		{"NonNumeric", "page=abc&limit=xyz", 1, 10},
		{"NonPositive", "page=0&limit=-5", 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := parse(t, tt.raw)
			assert.Equal(t, tt.page, req.Page())
			assert.Equal(t, tt.limit, req.Limit())
		})
	}
}

func TestPaginate(t *testing.T) {
	t.Run("ComputesOffset", func(t *testing.T) {
		req := parse(t, "page=3&limit=10")
		req, err := req.Paginate(35)
		require.NoError(t, err)
		assert.Equal(t, 20, req.Offset())
	})

	t.Run("PagePastEndFails", func(t *testing.T) {
		req := parse(t, "page=5&limit=10")
		_, err := req.Paginate(35)
		require.Error(t, err)
		appErr, _ := apperror.Normalize(err)
		assert.Equal(t, 404, appErr.Code)
		assert.Equal(t, "Page invalid", appErr.Message)
	})

	t.Run("LastPartialPageServes", func(t *testing.T) {
		req := parse(t, "page=4&limit=10")
		req, err := req.Paginate(35)
		require.NoError(t, err)
		assert.Equal(t, 30, req.Offset())
	})

	t.Run("EmptyCollectionServesPageOne", func(t *testing.T) {
		req := parse(t, "")
		_, err := req.Paginate(0)
		assert.NoError(t, err)
	})
}

func TestSQLRendering(t *testing.T) {
	req := parse(t, "popularity[gte]=5&sort=-popularity&fields=name,popularity&page=2&limit=10")
	req, err := req.Paginate(30)
	require.NoError(t, err)

	sql, args := req.SQL("dogs")
	assert.Equal(t,
		"SELECT id, name, popularity FROM dogs WHERE popularity >= $1 ORDER BY popularity DESC LIMIT $2 OFFSET $3",
		sql)
	assert.Equal(t, []any{5.0, 10, 10}, args)
}

func TestSQLExtraConditionsComeFirst(t *testing.T) {
	req := parse(t, "name=Rex")
	req, err := req.Paginate(1)
	require.NoError(t, err)

	sql, args := req.SQL("users", Condition{Column: "active", Op: OpEq, Value: true})
	assert.Contains(t, sql, "WHERE active = $1 AND name = $2")
	assert.Equal(t, true, args[0])
	assert.Equal(t, "Rex", args[1])
}

func TestRemapHonorsProjection(t *testing.T) {
	req := parse(t, "fields=name,breedType")
	doc := req.Remap(map[string]any{
		"id":         "abc",
		"name":       "Rex",
		"breed_type": "Purebred",
		"popularity": 9.0,
	})
	assert.Equal(t, map[string]any{"id": "abc", "name": "Rex", "breedType": "Purebred"}, doc)
}

package query

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/pkg/apperrors"
)

func TestParse_Empty(t *testing.T) {
	q, err := Parse(TaskSchema, Params{})
	require.NoError(t, err)
	assert.Empty(t, q.Conditions)
	assert.Empty(t, q.Sort)
	assert.Nil(t, q.Projection)
	assert.Zero(t, q.Skip)
	assert.Zero(t, q.Limit)
	assert.False(t, q.Count)
}

func TestParse_Where(t *testing.T) {
	owner := uuid.New()
	deadline := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		schema *Schema
		where  string
		want   []Condition
	}{
		{
			name:   "equality literal",
			schema: TaskSchema,
			where:  `{"completed": false}`,
			want:   []Condition{{Field: "completed", Op: OpEq, Value: false}},
		},
		{
			name:   "operators sorted by field then operator",
			schema: TaskSchema,
			where:  `{"name": {"$ne": "x"}, "deadline": {"$lt": "2025-01-01", "$gte": 1735689600000}}`,
			want: []Condition{
				{Field: "deadline", Op: OpGte, Value: deadline},
				{Field: "deadline", Op: OpLt, Value: deadline},
				{Field: "name", Op: OpNe, Value: "x"},
			},
		},
		{
			name:   "unassigned owner",
			schema: TaskSchema,
			where:  `{"assignedUser": ""}`,
			want:   []Condition{{Field: "assignedUser", Op: OpEq, Value: nil}},
		},
		{
			name:   "owner in list",
			schema: TaskSchema,
			where:  `{"assignedUser": {"$in": ["` + owner.String() + `", null]}}`,
			want:   []Condition{{Field: "assignedUser", Op: OpIn, Value: []any{owner, nil}}},
		},
		{
			name:   "_id alias",
			schema: UserSchema,
			where:  `{"_id": "` + owner.String() + `"}`,
			want:   []Condition{{Field: "id", Op: OpEq, Value: owner}},
		},
		{
			name:   "pending task membership",
			schema: UserSchema,
			where:  `{"pendingTasks": "` + owner.String() + `"}`,
			want:   []Condition{{Field: "pendingTasks", Op: OpEq, Value: owner}},
		},
		{
			name:   "pending tasks exact",
			schema: UserSchema,
			where:  `{"pendingTasks": []}`,
			want:   []Condition{{Field: "pendingTasks", Op: OpEq, Value: []uuid.UUID{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.schema, Params{Where: tt.where})
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Conditions)
		})
	}
}

func TestParse_WhereErrors(t *testing.T) {
	tests := []struct {
		name    string
		where   string
		message string
	}{
		{name: "malformed json", where: `{"name":`, message: "Invalid JSON in 'where' parameter"},
		{name: "trailing data", where: `{} {}`, message: "Invalid JSON in 'where' parameter"},
		{name: "not an object", where: `["name"]`, message: "Invalid 'where' parameter: must be a JSON object"},
		{name: "unknown field", where: `{"owner": "x"}`, message: `Invalid 'where' parameter: unknown field "owner"`},
		{name: "unknown operator", where: `{"name": {"$regex": "a"}}`, message: `Invalid 'where' parameter: unsupported operator "$regex"`},
		{name: "embedded doc", where: `{"name": {"first": "a"}}`, message: "Invalid 'where' parameter: embedded documents are not supported"},
		{name: "ordering on bool", where: `{"completed": {"$gt": false}}`, message: `Invalid 'where' parameter: operator $gt is not supported on "completed"`},
		{name: "bad id", where: `{"assignedUser": "not-a-uuid"}`, message: `Invalid 'where' parameter: invalid value for "assignedUser"`},
		{name: "in expects array", where: `{"name": {"$in": "a"}}`, message: `Invalid 'where' parameter: $in on "name" expects an array`},
		{name: "wrong type", where: `{"completed": "yes"}`, message: `Invalid 'where' parameter: invalid value for "completed"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(TaskSchema, Params{Where: tt.where})
			require.Error(t, err)
			assert.True(t, apperrors.IsBadRequest(err))
			assert.Equal(t, tt.message, apperrors.MessageOf(err))
		})
	}
}

func TestParse_SortKeepsKeyOrder(t *testing.T) {
	q, err := Parse(TaskSchema, Params{Sort: `{"deadline": -1, "name": "asc", "_id": 1}`})
	require.NoError(t, err)
	assert.Equal(t, []SortField{
		{Field: "deadline", Descending: true},
		{Field: "name"},
		{Field: "id"},
	}, q.Sort)
}

func TestParse_SortErrors(t *testing.T) {
	for raw, message := range map[string]string{
		`{"name": 1`:    "Invalid JSON in 'sort' parameter",
		`[1]`:           "Invalid 'sort' parameter: must be a JSON object",
		`{"name": 2}`:   `Invalid 'sort' parameter: invalid direction for "name"`,
		`{"color": 1}`:  `Invalid 'sort' parameter: unknown field "color"`,
	} {
		_, err := Parse(TaskSchema, Params{Sort: raw})
		require.Error(t, err, raw)
		assert.Equal(t, message, apperrors.MessageOf(err), raw)
	}
}

func TestParseSelect(t *testing.T) {
	include, err := ParseSelect(UserSchema, `{"name": 1, "email": true}`)
	require.NoError(t, err)
	assert.True(t, include.Includes("id"))
	assert.True(t, include.Includes("name"))
	assert.False(t, include.Includes("pendingTasks"))

	exclude, err := ParseSelect(UserSchema, `{"pendingTasks": 0, "_id": 0}`)
	require.NoError(t, err)
	assert.False(t, exclude.Includes("id"))
	assert.True(t, exclude.Includes("name"))
	assert.False(t, exclude.Includes("pendingTasks"))

	idOnly, err := ParseSelect(UserSchema, `{"id": 1}`)
	require.NoError(t, err)
	assert.True(t, idOnly.Includes("id"))
	assert.False(t, idOnly.Includes("name"))

	_, err = ParseSelect(UserSchema, `{"name": 1, "email": 0}`)
	assert.Equal(t, "Invalid 'select' parameter: cannot mix inclusion and exclusion", apperrors.MessageOf(err))

	_, err = ParseSelect(UserSchema, `{name: 1}`)
	assert.Equal(t, "Invalid JSON in 'select' parameter", apperrors.MessageOf(err))
}

func TestProjection_Apply(t *testing.T) {
	p, err := ParseSelect(TaskSchema, `{"name": 1, "_id": 0}`)
	require.NoError(t, err)

	doc, err := p.ApplyTo(map[string]any{"id": "1", "name": "T1", "completed": false})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "T1"}, doc)

	var nilProjection *Projection
	full := map[string]any{"id": "1"}
	assert.Equal(t, full, nilProjection.Apply(full))
}

func TestParse_Pagination(t *testing.T) {
	q, err := Parse(UserSchema, Params{Skip: "20", Limit: "10", Count: "true"})
	require.NoError(t, err)
	assert.Equal(t, 20, q.Skip)
	assert.Equal(t, 10, q.Limit)
	assert.True(t, q.Count)

	for _, count := range []string{"1", "TRUE", "True", " true"} {
		q, err = Parse(UserSchema, Params{Count: count})
		require.NoError(t, err)
		assert.False(t, q.Count, "count=%q", count)
	}

	for _, p := range []Params{{Skip: "-1"}, {Limit: "ten"}, {Limit: "1.5"}} {
		_, err := Parse(UserSchema, p)
		assert.True(t, apperrors.IsBadRequest(err))
	}
}

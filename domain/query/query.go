// Package query turns the loosely typed list parameters of the HTTP API
// (where, sort, select, skip, limit, count) into a backend-neutral Query
// that each store adapter compiles into its own dialect.
package query

import "encoding/json"

// Operator is a comparison understood by every store adapter
type Operator string

const (
	OpEq  Operator = "$eq"
	OpNe  Operator = "$ne"
	OpGt  Operator = "$gt"
	OpGte Operator = "$gte"
	OpLt  Operator = "$lt"
	OpLte Operator = "$lte"
	OpIn  Operator = "$in"
	OpNin Operator = "$nin"
)

var operators = map[Operator]bool{
	OpEq: true, OpNe: true, OpGt: true, OpGte: true,
	OpLt: true, OpLte: true, OpIn: true, OpNin: true,
}

func (op Operator) ordering() bool {
	return op == OpGt || op == OpGte || op == OpLt || op == OpLte
}

// Condition is one field comparison. Value holds the coerced operand:
//   - string, bool, time.Time for scalar kinds
//   - uuid.UUID for ids, nil for "no reference" on nullable ids
//   - uuid.UUID (membership) or []uuid.UUID (exact match) for id lists
//   - []any of the above for $in and $nin
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// SortField orders results by one field
type SortField struct {
	Field      string
	Descending bool
}

// Projection selects the fields to return. In include mode Fields lists
// the wanted fields; in exclude mode it lists the dropped ones. The id is
// returned unless excluded explicitly.
type Projection struct {
	Fields    []string
	Exclude   bool
	ExcludeID bool
}

// Includes reports whether field survives the projection
func (p *Projection) Includes(field string) bool {
	if p == nil {
		return true
	}
	if field == FieldID {
		return !p.ExcludeID
	}
	for _, f := range p.Fields {
		if f == field {
			return !p.Exclude
		}
	}
	return p.Exclude
}

// Apply removes the fields of doc that the projection drops
func (p *Projection) Apply(doc map[string]any) map[string]any {
	if p == nil {
		return doc
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if p.Includes(k) {
			out[k] = v
		}
	}
	return out
}

// ApplyTo renders v as a JSON object and applies the projection
func (p *Projection) ApplyTo(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return p.Apply(doc), nil
}

// Query is a parsed list request
type Query struct {
	Conditions []Condition
	Sort       []SortField
	Projection *Projection
	Skip       int
	Limit      int
	Count      bool
}

// Where builds a filter-only query, mostly for internal callers
func Where(conditions ...Condition) *Query {
	return &Query{Conditions: conditions}
}

// Eq is shorthand for an equality condition
func Eq(field string, value any) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

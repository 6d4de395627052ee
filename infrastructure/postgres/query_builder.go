package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhub/domain/query"
)

var userColumns = map[string]string{
	query.FieldID:           "id",
	query.FieldName:         "name",
	query.FieldEmail:        "email",
	query.FieldPendingTasks: "pending_tasks",
}

var taskColumns = map[string]string{
	query.FieldID:               "id",
	query.FieldName:             "name",
	query.FieldDescription:      "description",
	query.FieldDeadline:         "deadline",
	query.FieldCompleted:        "completed",
	query.FieldAssignedUser:     "assigned_user",
	query.FieldAssignedUserName: "assigned_user_name",
}

// arrayColumns hold text[] of ids and follow membership semantics
var arrayColumns = map[string]bool{"pending_tasks": true}

// nullableColumns may hold NULL
var nullableColumns = map[string]bool{"assigned_user": true}

var sqlOperators = map[query.Operator]string{
	query.OpEq:  "=",
	query.OpNe:  "<>",
	query.OpGt:  ">",
	query.OpGte: ">=",
	query.OpLt:  "<",
	query.OpLte: "<=",
}

// whereClause compiles the conditions of q into one SQL expression with
// gorm placeholders. An empty clause means no filter.
func whereClause(columns map[string]string, q *query.Query) (string, []interface{}, error) {
	if q == nil || len(q.Conditions) == 0 {
		return "", nil, nil
	}

	parts := make([]string, 0, len(q.Conditions))
	var args []interface{}
	for _, c := range q.Conditions {
		col, ok := columns[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown field %q", c.Field)
		}

		var (
			expr string
			a    []interface{}
			err  error
		)
		if arrayColumns[col] {
			expr, a, err = arrayCondition(col, c)
		} else {
			expr, a, err = scalarCondition(col, c)
		}
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, expr)
		args = append(args, a...)
	}
	return strings.Join(parts, " AND "), args, nil
}

func scalarCondition(col string, c query.Condition) (string, []interface{}, error) {
	switch c.Op {
	case query.OpIn, query.OpNin:
		items, _ := c.Value.([]any)
		values, hasNull := splitNull(items)
		expr, args := inCondition(col, values, hasNull, c.Op == query.OpNin)
		return expr, args, nil
	}

	if c.Value == nil {
		switch c.Op {
		case query.OpEq:
			return col + " IS NULL", nil, nil
		case query.OpNe:
			return col + " IS NOT NULL", nil, nil
		}
		return "FALSE", nil, nil
	}

	op, ok := sqlOperators[c.Op]
	if !ok {
		return "", nil, fmt.Errorf("unsupported operator %s", c.Op)
	}
	arg := sqlValue(c.Value)
	if c.Op == query.OpNe && nullableColumns[col] {
		return fmt.Sprintf("(%s <> ? OR %s IS NULL)", col, col), []interface{}{arg}, nil
	}
	return fmt.Sprintf("%s %s ?", col, op), []interface{}{arg}, nil
}

// inCondition renders $in and $nin. gorm expands the slice argument into
// a parenthesised placeholder list.
func inCondition(col string, values []interface{}, hasNull, negate bool) (string, []interface{}) {
	switch {
	case len(values) == 0 && !hasNull && !negate:
		return "FALSE", nil
	case len(values) == 0 && !hasNull:
		return "TRUE", nil
	case len(values) == 0 && !negate:
		return col + " IS NULL", nil
	case len(values) == 0:
		return col + " IS NOT NULL", nil
	}

	args := []interface{}{values}
	switch {
	case !negate && hasNull:
		return fmt.Sprintf("(%s IN ? OR %s IS NULL)", col, col), args
	case !negate:
		return col + " IN ?", args
	case hasNull:
		return fmt.Sprintf("(%s NOT IN ? AND %s IS NOT NULL)", col, col), args
	case nullableColumns[col]:
		return fmt.Sprintf("(%s NOT IN ? OR %s IS NULL)", col, col), args
	}
	return col + " NOT IN ?", args
}

func arrayCondition(col string, c query.Condition) (string, []interface{}, error) {
	switch c.Op {
	case query.OpEq, query.OpNe:
		var expr string
		var arg interface{}
		switch v := c.Value.(type) {
		case uuid.UUID:
			expr, arg = fmt.Sprintf("?::text = ANY(%s)", col), v.String()
		case []uuid.UUID:
			expr, arg = fmt.Sprintf("%s = ?::text[]", col), idStrings(v)
		default:
			return "", nil, fmt.Errorf("invalid operand for %s", col)
		}
		if c.Op == query.OpNe {
			expr = "NOT (" + expr + ")"
		}
		return expr, []interface{}{arg}, nil

	case query.OpIn, query.OpNin:
		items, _ := c.Value.([]any)
		members := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			if id, ok := item.(uuid.UUID); ok {
				members = append(members, id)
			}
		}
		expr := fmt.Sprintf("%s && ?::text[]", col)
		if c.Op == query.OpNin {
			expr = "NOT (" + expr + ")"
		}
		return expr, []interface{}{idStrings(members)}, nil
	}
	return "", nil, fmt.Errorf("operator %s is not supported on %s", c.Op, col)
}

// orderClause renders the sort; nulls order first ascending like the
// other stores. Without a sort, rows come back in insertion order.
func orderClause(columns map[string]string, q *query.Query) (string, error) {
	if q == nil || len(q.Sort) == 0 {
		return "created_at ASC, id ASC", nil
	}
	parts := make([]string, 0, len(q.Sort)+1)
	for _, sf := range q.Sort {
		col, ok := columns[sf.Field]
		if !ok {
			return "", fmt.Errorf("unknown field %q", sf.Field)
		}
		if sf.Descending {
			parts = append(parts, col+" DESC NULLS LAST")
		} else {
			parts = append(parts, col+" ASC NULLS FIRST")
		}
	}
	parts = append(parts, "created_at ASC")
	return strings.Join(parts, ", "), nil
}

func splitNull(items []any) ([]interface{}, bool) {
	values := make([]interface{}, 0, len(items))
	hasNull := false
	for _, item := range items {
		if item == nil {
			hasNull = true
			continue
		}
		values = append(values, sqlValue(item))
	}
	return values, hasNull
}

func sqlValue(v any) interface{} {
	switch x := v.(type) {
	case uuid.UUID:
		return x.String()
	case time.Time:
		return x.UTC()
	case []uuid.UUID:
		return idStrings(x)
	}
	return v
}

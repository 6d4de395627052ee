package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhub/domain/query"
)

type row struct {
	doc   map[string]any
	value any
}

// evaluate filters rows by q's conditions, then sorts and paginates when
// paginate is set. Counting passes paginate=false so skip and limit are
// ignored.
func evaluate(rows []row, q *query.Query, paginate bool) ([]row, error) {
	if q == nil {
		return rows, nil
	}

	out := make([]row, 0, len(rows))
	for _, r := range rows {
		ok, err := matchAll(r.doc, q.Conditions)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	if !paginate {
		return out, nil
	}

	if len(q.Sort) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, sf := range q.Sort {
				c := compare(out[i].doc[sf.Field], out[j].doc[sf.Field])
				if c == 0 {
					continue
				}
				if sf.Descending {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if q.Skip > 0 {
		if q.Skip >= len(out) {
			return []row{}, nil
		}
		out = out[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func matchAll(doc map[string]any, conditions []query.Condition) (bool, error) {
	for _, c := range conditions {
		v, ok := doc[c.Field]
		if !ok {
			return false, fmt.Errorf("unknown field %q", c.Field)
		}
		if !match(v, c) {
			return false, nil
		}
	}
	return true, nil
}

func match(v any, c query.Condition) bool {
	if list, ok := v.([]uuid.UUID); ok {
		return matchList(list, c)
	}

	switch c.Op {
	case query.OpEq:
		return compare(v, c.Value) == 0
	case query.OpNe:
		return compare(v, c.Value) != 0
	case query.OpIn:
		return anyEqual(v, c.Value)
	case query.OpNin:
		return !anyEqual(v, c.Value)
	case query.OpGt:
		return orderable(v, c.Value) && compare(v, c.Value) > 0
	case query.OpGte:
		return orderable(v, c.Value) && compare(v, c.Value) >= 0
	case query.OpLt:
		return orderable(v, c.Value) && compare(v, c.Value) < 0
	case query.OpLte:
		return orderable(v, c.Value) && compare(v, c.Value) <= 0
	}
	return false
}

// matchList follows document-store semantics for array fields: a scalar
// operand tests membership, an array operand tests exact equality.
func matchList(list []uuid.UUID, c query.Condition) bool {
	contains := func(operand any) bool {
		id, ok := operand.(uuid.UUID)
		if !ok {
			return false
		}
		for _, v := range list {
			if v == id {
				return true
			}
		}
		return false
	}
	equals := func(operand any) bool {
		other, ok := operand.([]uuid.UUID)
		if !ok || len(other) != len(list) {
			return false
		}
		for i := range list {
			if list[i] != other[i] {
				return false
			}
		}
		return true
	}
	test := func(operand any) bool {
		if _, ok := operand.([]uuid.UUID); ok {
			return equals(operand)
		}
		return contains(operand)
	}

	switch c.Op {
	case query.OpEq:
		return test(c.Value)
	case query.OpNe:
		return !test(c.Value)
	case query.OpIn, query.OpNin:
		items, _ := c.Value.([]any)
		found := false
		for _, item := range items {
			if test(item) {
				found = true
				break
			}
		}
		return found == (c.Op == query.OpIn)
	}
	return false
}

func anyEqual(v any, operand any) bool {
	items, _ := operand.([]any)
	for _, item := range items {
		if compare(v, item) == 0 {
			return true
		}
	}
	return false
}

// orderable reports whether ordering operators apply: both sides must be
// present and of the same type.
func orderable(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	return fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}

// compare orders null before every value, then by type-specific order
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case uuid.UUID:
		if y, ok := b.(uuid.UUID); ok {
			return strings.Compare(x.String(), y.String())
		}
	case []uuid.UUID:
		if y, ok := b.([]uuid.UUID); ok {
			return len(x) - len(y)
		}
	}
	// mismatched types never compare equal
	if c := strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b)); c != 0 {
		return c
	}
	return 1
}

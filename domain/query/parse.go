package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"taskhub/pkg/apperrors"
	"taskhub/pkg/datetime"
)

// Params are the raw list parameters as received on the query string
type Params struct {
	Where  string
	Sort   string
	Select string
	Skip   string
	Limit  string
	Count  string
}

// Parse validates p against schema and returns the resulting Query.
// Every failure is an apperrors BadRequest naming the offending parameter.
func Parse(schema *Schema, p Params) (*Query, error) {
	q := &Query{}
	var err error

	if q.Conditions, err = parseWhere(schema, p.Where); err != nil {
		return nil, err
	}
	if q.Sort, err = parseSort(schema, p.Sort); err != nil {
		return nil, err
	}
	if q.Projection, err = ParseSelect(schema, p.Select); err != nil {
		return nil, err
	}
	if q.Skip, err = parseNonNegative("skip", p.Skip); err != nil {
		return nil, err
	}
	if q.Limit, err = parseNonNegative("limit", p.Limit); err != nil {
		return nil, err
	}
	q.Count = p.Count == "true"

	return q, nil
}

func invalidJSON(param string) error {
	return apperrors.BadRequestf("Invalid JSON in '%s' parameter", param)
}

func invalidParam(param, format string, args ...any) error {
	return apperrors.BadRequestf("Invalid '%s' parameter: %s", param, fmt.Sprintf(format, args...))
}

// ========== where ==========

func parseWhere(schema *Schema, raw string) ([]Condition, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var doc any
	if err := decodeJSON(raw, &doc); err != nil {
		return nil, invalidJSON("where")
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, invalidParam("where", "must be a JSON object")
	}

	var conditions []Condition
	for _, name := range sortedKeys(obj) {
		field, ok := schema.Lookup(name)
		if !ok {
			return nil, invalidParam("where", "unknown field %q", name)
		}

		ops, isOperatorDoc, err := operatorDocument(obj[name])
		if err != nil {
			return nil, err
		}
		if !isOperatorDoc {
			ops = map[string]any{string(OpEq): obj[name]}
		}

		for _, opName := range sortedKeys(ops) {
			op := Operator(opName)
			if !operators[op] {
				return nil, invalidParam("where", "unsupported operator %q", opName)
			}
			value, err := coerceOperand(field, op, ops[opName])
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, Condition{Field: field.Name, Op: op, Value: value})
		}
	}
	return conditions, nil
}

// operatorDocument reports whether v is an object of $-prefixed operators.
// Objects mixing operators with plain keys, or plain sub-documents, are
// rejected since no field holds embedded documents.
func operatorDocument(v any) (map[string]any, bool, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false, nil
	}
	if len(obj) == 0 {
		return nil, false, invalidParam("where", "empty operator object")
	}
	for k := range obj {
		if !strings.HasPrefix(k, "$") {
			return nil, false, invalidParam("where", "embedded documents are not supported")
		}
	}
	return obj, true, nil
}

func coerceOperand(field Field, op Operator, v any) (any, error) {
	if op.ordering() && !field.ordered() {
		return nil, invalidParam("where", "operator %s is not supported on %q", op, field.Name)
	}

	if op == OpIn || op == OpNin {
		list, ok := v.([]any)
		if !ok {
			return nil, invalidParam("where", "%s on %q expects an array", op, field.Name)
		}
		out := make([]any, 0, len(list))
		for _, item := range list {
			c, err := coerceScalar(field, item)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	}

	if field.Kind == KindIDList {
		if list, ok := v.([]any); ok {
			out := make([]uuid.UUID, 0, len(list))
			for _, item := range list {
				c, err := coerceScalar(field, item)
				if err != nil {
					return nil, err
				}
				out = append(out, c.(uuid.UUID))
			}
			return out, nil
		}
	}

	return coerceScalar(field, v)
}

// coerceScalar converts one JSON value to the Go type of field's kind. For
// id lists the scalar is a single member id.
func coerceScalar(field Field, v any) (any, error) {
	switch field.Kind {
	case KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindTime:
		switch t := v.(type) {
		case string:
			if parsed, err := datetime.Parse(t); err == nil {
				return parsed, nil
			}
		case json.Number:
			if ms, err := t.Int64(); err == nil {
				return datetime.FromMillis(ms), nil
			}
		}
	case KindID, KindIDList:
		if v == nil || v == "" {
			if field.Nullable {
				return nil, nil
			}
			break
		}
		if s, ok := v.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				return id, nil
			}
		}
	}
	return nil, invalidParam("where", "invalid value for %q", field.Name)
}

// ========== sort ==========

func parseSort(schema *Schema, raw string) ([]SortField, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	entries, err := decodeOrderedObject(raw)
	if err != nil {
		if err == errNotObject {
			return nil, invalidParam("sort", "must be a JSON object")
		}
		return nil, invalidJSON("sort")
	}

	fields := make([]SortField, 0, len(entries))
	for _, e := range entries {
		field, ok := schema.Lookup(e.key)
		if !ok {
			return nil, invalidParam("sort", "unknown field %q", e.key)
		}
		desc, err := sortDirection(e.value)
		if err != nil {
			return nil, invalidParam("sort", "invalid direction for %q", e.key)
		}
		fields = append(fields, SortField{Field: field.Name, Descending: desc})
	}
	return fields, nil
}

func sortDirection(v any) (bool, error) {
	switch d := v.(type) {
	case json.Number:
		switch d.String() {
		case "1":
			return false, nil
		case "-1":
			return true, nil
		}
	case string:
		switch strings.ToLower(d) {
		case "asc", "ascending":
			return false, nil
		case "desc", "descending":
			return true, nil
		}
	}
	return false, fmt.Errorf("invalid sort direction %v", v)
}

// ========== select ==========

// ParseSelect parses a projection document. It is exported for the
// single-entity endpoints, which honour select but nothing else.
func ParseSelect(schema *Schema, raw string) (*Projection, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	entries, err := decodeOrderedObject(raw)
	if err != nil {
		if err == errNotObject {
			return nil, invalidParam("select", "must be a JSON object")
		}
		return nil, invalidJSON("select")
	}
	if len(entries) == 0 {
		return nil, nil
	}

	p := &Projection{}
	mode := 0 // 1 include, -1 exclude
	idOnly := false
	for _, e := range entries {
		field, ok := schema.Lookup(e.key)
		if !ok {
			return nil, invalidParam("select", "unknown field %q", e.key)
		}
		include, err := selectFlag(e.value)
		if err != nil {
			return nil, invalidParam("select", "invalid flag for %q", e.key)
		}

		if field.Name == FieldID {
			p.ExcludeID = !include
			idOnly = include
			continue
		}

		m := -1
		if include {
			m = 1
		}
		if mode != 0 && mode != m {
			return nil, invalidParam("select", "cannot mix inclusion and exclusion")
		}
		mode = m
		p.Fields = append(p.Fields, field.Name)
	}

	switch mode {
	case 1:
		p.Exclude = false
	case -1:
		p.Exclude = true
	default:
		// only the id was mentioned: {"id":1} keeps just the id,
		// {"id":0} keeps everything else
		p.Exclude = !idOnly
	}
	return p, nil
}

func selectFlag(v any) (bool, error) {
	switch f := v.(type) {
	case bool:
		return f, nil
	case json.Number:
		switch f.String() {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
	}
	return false, fmt.Errorf("invalid select flag %v", v)
}

// ========== skip / limit ==========

func parseNonNegative(param, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, invalidParam(param, "must be a non-negative integer")
	}
	return n, nil
}

// ========== JSON helpers ==========

type entry struct {
	key   string
	value any
}

var errNotObject = fmt.Errorf("not a JSON object")

func decodeJSON(raw string, v any) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after JSON value")
	}
	return nil
}

// decodeOrderedObject decodes a flat JSON object keeping key order, which
// matters for multi-key sorts.
func decodeOrderedObject(raw string) ([]entry, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		// still distinguish malformed input from a well-formed non-object
		var rest any
		if decodeJSON(raw, &rest) != nil {
			return nil, fmt.Errorf("malformed JSON")
		}
		return nil, errNotObject
	}

	var entries []entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("malformed JSON")
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		entries = append(entries, entry{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return entries, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package mongodb

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskhub/domain/query"
)

// fieldKey maps query field names to document keys
func fieldKey(field string) string {
	if field == query.FieldID {
		return "_id"
	}
	return field
}

// buildFilter turns the query conditions into a filter document. Operators
// on the same field share one operator document.
func buildFilter(q *query.Query) bson.M {
	filter := bson.M{}
	if q == nil {
		return filter
	}
	for _, c := range q.Conditions {
		key := fieldKey(c.Field)
		ops, ok := filter[key].(bson.M)
		if !ok {
			ops = bson.M{}
			filter[key] = ops
		}
		ops[string(c.Op)] = bsonValue(c.Field, c.Value)
	}
	return filter
}

func bsonValue(field string, v any) interface{} {
	switch x := v.(type) {
	case nil:
		if field == query.FieldAssignedUser {
			return ""
		}
		return nil
	case uuid.UUID:
		return x.String()
	case []uuid.UUID:
		return idStrings(x)
	case time.Time:
		return x.UTC()
	case []any:
		out := make(bson.A, 0, len(x))
		for _, item := range x {
			out = append(out, bsonValue(field, item))
		}
		return out
	}
	return v
}

// buildSort falls back to insertion order and breaks ties by it
func buildSort(q *query.Query) bson.D {
	var sort bson.D
	if q != nil {
		for _, sf := range q.Sort {
			dir := 1
			if sf.Descending {
				dir = -1
			}
			sort = append(sort, bson.E{Key: fieldKey(sf.Field), Value: dir})
		}
	}
	for _, key := range []string{"createdAt", "_id"} {
		if !hasKey(sort, key) {
			sort = append(sort, bson.E{Key: key, Value: 1})
		}
	}
	return sort
}

func hasKey(d bson.D, key string) bool {
	for _, e := range d {
		if e.Key == key {
			return true
		}
	}
	return false
}

func findOptions(q *query.Query) *options.FindOptions {
	opts := options.Find().SetSort(buildSort(q))
	if q == nil {
		return opts
	}
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return opts
}

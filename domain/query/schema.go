package query

// Kind is the value type of a queryable field
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindTime
	KindID
	KindIDList
)

// Field describes one queryable attribute by its JSON name
type Field struct {
	Name string
	Kind Kind
	// Nullable ID fields accept "" and null as "no reference"
	Nullable bool
}

func (f Field) ordered() bool {
	return f.Kind == KindString || f.Kind == KindTime
}

// Schema lists the fields a collection can be filtered, sorted and
// projected on
type Schema struct {
	Collection string
	fields     map[string]Field
	order      []string
}

func NewSchema(collection string, fields ...Field) *Schema {
	s := &Schema{Collection: collection, fields: make(map[string]Field, len(fields))}
	for _, f := range fields {
		s.fields[f.Name] = f
		s.order = append(s.order, f.Name)
	}
	return s
}

// Lookup resolves a field name, accepting "_id" for "id"
func (s *Schema) Lookup(name string) (Field, bool) {
	if name == "_id" {
		name = FieldID
	}
	f, ok := s.fields[name]
	return f, ok
}

// Names returns the field names in declaration order
func (s *Schema) Names() []string {
	return append([]string(nil), s.order...)
}

const (
	FieldID               = "id"
	FieldName             = "name"
	FieldEmail            = "email"
	FieldPendingTasks     = "pendingTasks"
	FieldDescription      = "description"
	FieldDeadline         = "deadline"
	FieldCompleted        = "completed"
	FieldAssignedUser     = "assignedUser"
	FieldAssignedUserName = "assignedUserName"
)

var UserSchema = NewSchema("users",
	Field{Name: FieldID, Kind: KindID},
	Field{Name: FieldName, Kind: KindString},
	Field{Name: FieldEmail, Kind: KindString},
	Field{Name: FieldPendingTasks, Kind: KindIDList},
)

var TaskSchema = NewSchema("tasks",
	Field{Name: FieldID, Kind: KindID},
	Field{Name: FieldName, Kind: KindString},
	Field{Name: FieldDescription, Kind: KindString},
	Field{Name: FieldDeadline, Kind: KindTime},
	Field{Name: FieldCompleted, Kind: KindBool},
	Field{Name: FieldAssignedUser, Kind: KindID, Nullable: true},
	Field{Name: FieldAssignedUserName, Kind: KindString},
)

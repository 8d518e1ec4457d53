package validators

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindFloat
	KindBool
	KindObjectID
	KindTime
	KindObject
	KindAny
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	case KindObjectID:
		return "objectId"
	case KindTime:
		return "date"
	case KindObject:
		return "object"
	default:
		return "any"
	}
}

// Field describes one document field as it appears on the wire.
type Field struct {
	JSONName string
	BSONName string
	Kind     FieldKind
	Required bool
	// Rules is the raw validate tag.
	Rules string
	// Partial is the name go-playground/validator expects in StructPartial.
	Partial string
	Index   []int
}

// Schema maps the json and bson names of a model to its fields.
type Schema struct {
	fields []*Field
	byName map[string]*Field
}

var (
	schemaMu    sync.RWMutex
	schemaCache = map[reflect.Type]*Schema{}

	objectIDType = reflect.TypeOf(primitive.ObjectID{})
	timeType     = reflect.TypeOf(time.Time{})
)

// SchemaOf returns the (cached) schema of model type T.
func SchemaOf[T any]() *Schema {
	var zero T
	return schemaFor(reflect.TypeOf(zero))
}

func schemaFor(t reflect.Type) *Schema {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	schemaMu.RLock()
	s, ok := schemaCache[t]
	schemaMu.RUnlock()
	if ok {
		return s
	}

	s = &Schema{byName: map[string]*Field{}}
	s.collect(t, nil, "")

	schemaMu.Lock()
	schemaCache[t] = s
	schemaMu.Unlock()
	return s
}

func (s *Schema) collect(t reflect.Type, index []int, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		idx := append(append([]int{}, index...), i)

		bsonName, inline := parseBSONTag(sf)
		if sf.Anonymous && (inline || sf.Tag.Get("json") == "") && sf.Type.Kind() == reflect.Struct {
			s.collect(sf.Type, idx, prefix+sf.Name+".")
			continue
		}
		if !sf.IsExported() || bsonName == "-" {
			continue
		}

		jsonName := strings.Split(sf.Tag.Get("json"), ",")[0]
		if jsonName == "-" {
			continue
		}
		if jsonName == "" {
			jsonName = sf.Name
		}
		if bsonName == "" {
			bsonName = strings.ToLower(sf.Name)
		}

		f := &Field{
			JSONName: jsonName,
			BSONName: bsonName,
			Kind:     kindOf(sf.Type),
			Required: hasRule(sf.Tag.Get("validate"), "required"),
			Rules:    sf.Tag.Get("validate"),
			Partial:  prefix + sf.Name,
			Index:    idx,
		}
		s.fields = append(s.fields, f)
		s.byName[jsonName] = f
		s.byName[bsonName] = f
	}
}

func parseBSONTag(sf reflect.StructField) (string, bool) {
	parts := strings.Split(sf.Tag.Get("bson"), ",")
	inline := false
	for _, p := range parts[1:] {
		if p == "inline" {
			inline = true
		}
	}
	return parts[0], inline
}

func hasRule(tag, rule string) bool {
	for _, r := range strings.Split(tag, ",") {
		if r == rule {
			return true
		}
	}
	return false
}

func kindOf(t reflect.Type) FieldKind {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch {
	case t == objectIDType:
		return KindObjectID
	case t == timeType:
		return KindTime
	}
	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInt
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.Bool:
		return KindBool
	case reflect.Struct, reflect.Map:
		return KindObject
	default:
		return KindAny
	}
}

// Field looks a field up by json or bson name. "id" resolves to "_id".
func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

func (s *Schema) Fields() []*Field {
	return s.fields
}

// RequiredFields lists the json names that must be present on create.
func (s *Schema) RequiredFields() []string {
	var out []string
	for _, f := range s.fields {
		if f.Required {
			out = append(out, f.JSONName)
		}
	}
	return out
}

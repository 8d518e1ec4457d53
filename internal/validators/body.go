package validators

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Keys a client can never write through update endpoints.
var protectedKeys = map[string]bool{
	"_id":       true,
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
	"updatedBy": true,
}

type UpdateOptions struct {
	// StripAddedBy drops addedBy from the body (partial-update).
	StripAddedBy bool
}

// DecodeCreate decodes and fully validates a create body. Unknown keys are
// dropped.
func DecodeCreate[T any](data []byte) (*T, error) {
	schema := SchemaOf[T]()

	raw, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	if err := schema.checkTypes(raw); err != nil {
		return nil, err
	}

	doc, err := rebuild[T](raw)
	if err != nil {
		return nil, err
	}
	if err := ValidateStruct(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodeUpdate validates only the keys present in data and returns the
// decoded document together with the matching $set body, keyed by bson name.
func DecodeUpdate[T any](data []byte, opts UpdateOptions) (*T, bson.M, error) {
	schema := SchemaOf[T]()

	raw, err := decodeObject(data)
	if err != nil {
		return nil, nil, err
	}
	if err := schema.checkTypes(raw); err != nil {
		return nil, nil, err
	}

	var present []*Field
	for key := range raw {
		f, ok := schema.Field(key)
		if !ok || key != f.JSONName {
			continue
		}
		if protectedKeys[f.JSONName] || protectedKeys[f.BSONName] {
			continue
		}
		if opts.StripAddedBy && f.BSONName == "addedBy" {
			continue
		}
		present = append(present, f)
	}

	doc, err := rebuild[T](raw)
	if err != nil {
		return nil, nil, err
	}

	var partial []string
	for _, f := range present {
		if f.Rules != "" {
			partial = append(partial, f.Partial)
		}
	}
	if err := ValidatePartial(doc, partial...); err != nil {
		return nil, nil, err
	}

	v := reflect.ValueOf(doc).Elem()
	set := bson.M{}
	for _, f := range present {
		// explicit null clears the field
		if raw[f.JSONName] == nil {
			set[f.BSONName] = nil
			continue
		}
		set[f.BSONName] = plainValue(v.FieldByIndex(f.Index))
	}
	return doc, set, nil
}

func decodeObject(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, FormatDecodeError(err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return raw, nil
}

func rebuild[T any](raw map[string]interface{}) (*T, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	doc := new(T)
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, FormatDecodeError(err)
	}
	return doc, nil
}

// checkTypes rejects values of the wrong JSON type for known fields. Empty
// reference strings are normalised to null.
func (s *Schema) checkTypes(raw map[string]interface{}) error {
	var errs ValidationErrors
	for key, val := range raw {
		f, ok := s.Field(key)
		if !ok || key != f.JSONName || val == nil {
			continue
		}
		if f.Kind == KindObjectID {
			if str, ok := val.(string); ok && str == "" {
				raw[key] = nil
				continue
			}
		}
		if !bodyValueMatches(f.Kind, val) {
			errs = append(errs, fieldError(key, "type", val, fmt.Sprintf("%q must be %s", key, kindLabel(f.Kind))))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func kindLabel(k FieldKind) string {
	switch k {
	case KindObjectID:
		return "a valid objectId"
	case KindInt, KindObject:
		return "an " + k.String()
	default:
		return "a " + k.String()
	}
}

func bodyValueMatches(kind FieldKind, val interface{}) bool {
	switch kind {
	case KindString:
		_, ok := val.(string)
		return ok
	case KindInt:
		n, ok := val.(json.Number)
		if !ok {
			return false
		}
		_, err := n.Int64()
		return err == nil
	case KindFloat:
		_, ok := val.(json.Number)
		return ok
	case KindBool:
		_, ok := val.(bool)
		return ok
	case KindObjectID:
		str, ok := val.(string)
		return ok && IsValidObjectID(str)
	case KindTime:
		str, ok := val.(string)
		if !ok {
			return false
		}
		_, err := time.Parse(time.RFC3339, str)
		return err == nil
	case KindObject:
		_, ok := val.(map[string]interface{})
		return ok
	default:
		return true
	}
}

func plainValue(v reflect.Value) interface{} {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}

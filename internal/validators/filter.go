package validators

import (
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Operators that execute server-side code.
var forbiddenOperators = map[string]bool{
	"$where":       true,
	"$function":    true,
	"$accumulator": true,
}

var logicalOperators = map[string]bool{
	"$or":  true,
	"$and": true,
	"$nor": true,
}

// CastFilter checks the shape of a list/count filter against the schema and
// returns a driver filter with ids cast to ObjectIDs.
func (s *Schema) CastFilter(filter map[string]interface{}) (bson.M, error) {
	out := bson.M{}
	for key, val := range filter {
		switch {
		case forbiddenOperators[key]:
			return nil, operatorNotAllowed(key)

		case logicalOperators[key]:
			clauses, ok := val.([]interface{})
			if !ok {
				return nil, ValidationErrors{fieldError(key, "type", val, fmt.Sprintf("%q must be an array", key))}
			}
			cast := make(bson.A, 0, len(clauses))
			for _, clause := range clauses {
				m, ok := clause.(map[string]interface{})
				if !ok {
					return nil, ValidationErrors{fieldError(key, "type", clause, fmt.Sprintf("%q must contain objects", key))}
				}
				sub, err := s.CastFilter(m)
				if err != nil {
					return nil, err
				}
				cast = append(cast, sub)
			}
			out[key] = cast

		default:
			f, known := s.Field(key)
			if !known {
				v, err := passThrough(val)
				if err != nil {
					return nil, err
				}
				out[key] = v
				continue
			}

			v, err := castField(f, key, val)
			if err != nil {
				return nil, err
			}
			out[f.BSONName] = v
		}
	}
	return out, nil
}

func castField(f *Field, key string, val interface{}) (interface{}, error) {
	switch v := val.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		return castArray(f, v), nil
	case map[string]interface{}:
		return castOperators(f, v)
	default:
		scalar, ok := castScalar(f.Kind, v)
		if !ok {
			return nil, ValidationErrors{fieldError(key, "alternatives", val,
				fmt.Sprintf("%q must be one of [array, %s, object]", key, f.Kind))}
		}
		return scalar, nil
	}
}

func castOperators(f *Field, ops map[string]interface{}) (bson.M, error) {
	out := bson.M{}
	for op, val := range ops {
		if forbiddenOperators[op] {
			return nil, operatorNotAllowed(op)
		}

		switch op {
		case "$in", "$nin", "$all":
			arr, ok := val.([]interface{})
			if !ok {
				return nil, ValidationErrors{fieldError(op, "type", val, fmt.Sprintf("%q must be an array", op))}
			}
			out[op] = castArray(f, arr)
		case "$eq", "$ne", "$gt", "$gte", "$lt", "$lte":
			v, err := castValue(f.Kind, val)
			if err != nil {
				return nil, err
			}
			out[op] = v
		case "$not":
			if m, ok := val.(map[string]interface{}); ok {
				sub, err := castOperators(f, m)
				if err != nil {
					return nil, err
				}
				out[op] = sub
				continue
			}
			fallthrough
		default:
			v, err := passThrough(val)
			if err != nil {
				return nil, err
			}
			out[op] = v
		}
	}
	return out, nil
}

func castArray(f *Field, arr []interface{}) bson.A {
	out := make(bson.A, 0, len(arr))
	for _, item := range arr {
		out = append(out, castLoose(f.Kind, item))
	}
	return out
}

// castLoose converts what it can and leaves everything else as sent.
func castLoose(kind FieldKind, val interface{}) interface{} {
	v, _ := castValue(kind, val)
	return v
}

// castValue is castLoose that still reports forbidden operators.
func castValue(kind FieldKind, val interface{}) (interface{}, error) {
	if v, ok := castScalar(kind, val); ok {
		return v, nil
	}
	return passThrough(val)
}

func castScalar(kind FieldKind, val interface{}) (interface{}, bool) {
	switch kind {
	case KindObjectID:
		str, ok := val.(string)
		if !ok || !IsValidObjectID(str) {
			return nil, false
		}
		oid, err := primitive.ObjectIDFromHex(str)
		return oid, err == nil
	case KindString:
		str, ok := val.(string)
		return str, ok
	case KindInt:
		n, ok := val.(float64)
		if !ok || n != math.Trunc(n) {
			return nil, false
		}
		return int64(n), true
	case KindFloat:
		n, ok := val.(float64)
		return n, ok
	case KindBool:
		b, ok := val.(bool)
		return b, ok
	case KindTime:
		str, ok := val.(string)
		if !ok {
			return nil, false
		}
		t, err := time.Parse(time.RFC3339, str)
		return t, err == nil
	default:
		v, err := passThrough(val)
		return v, err == nil
	}
}

// passThrough copies a value it has no schema for, rejecting forbidden
// operators at any depth and turning whole floats into int64.
func passThrough(val interface{}) (interface{}, error) {
	switch v := val.(type) {
	case map[string]interface{}:
		out := bson.M{}
		for k, item := range v {
			if forbiddenOperators[k] {
				return nil, operatorNotAllowed(k)
			}
			cast, err := passThrough(item)
			if err != nil {
				return nil, err
			}
			out[k] = cast
		}
		return out, nil
	case []interface{}:
		out := make(bson.A, 0, len(v))
		for _, item := range v {
			cast, err := passThrough(item)
			if err != nil {
				return nil, err
			}
			out = append(out, cast)
		}
		return out, nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v), nil
		}
		return v, nil
	default:
		return v, nil
	}
}

func operatorNotAllowed(op string) error {
	return ValidationErrors{fieldError(op, "operator", op, fmt.Sprintf("%q is not allowed", op))}
}

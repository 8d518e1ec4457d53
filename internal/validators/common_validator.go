package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("object_id", validateObjectID)
}

var ErrInvalidObjectID = errors.New("invalid objectId")

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, ". ")
}

func fieldError(field, tag string, value interface{}, message string) ValidationError {
	return ValidationError{
		Field:   field,
		Tag:     tag,
		Value:   fmt.Sprintf("%v", value),
		Message: message,
	}
}

// ValidateStruct validates every rule of s.
func ValidateStruct(s interface{}) error {
	return translate(validate.Struct(s))
}

// ValidatePartial validates only the named fields. Names use the Go
// namespace go-playground/validator expects, e.g. "Pool".
func ValidatePartial(s interface{}, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return translate(validate.StructPartial(s, fields...))
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fieldError(fe.Field(), fe.Tag(), fe.Value(), getErrorMessage(fe)))
	}
	return out
}

func getErrorMessage(err validator.FieldError) string {
	field := fmt.Sprintf("%q", err.Field())
	switch err.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.ReplaceAll(err.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be less than or equal to %s", field, err.Param())
	case "object_id":
		return field + " must be a valid objectId"
	default:
		return fmt.Sprintf("%s failed on the %s rule", field, err.Tag())
	}
}

// FormatDecodeError turns an encoding/json failure into the same message
// style as rule failures.
func FormatDecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			return ValidationErrors{fieldError("body", "type", typeErr.Value, "request body must be an object")}
		}
		return ValidationErrors{fieldError(field, "type", typeErr.Value, fmt.Sprintf("%q must be %s", field, typeName(typeErr.Type)))}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return ValidationErrors{fieldError("body", "json", "", "request body is not valid JSON")}
	}
	return err
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice {
		if t.Kind() == reflect.Slice {
			return "an array"
		}
		t = t.Elem()
	}
	return kindLabel(kindOf(t))
}

func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let required tag handle empty values
	}
	return IsValidObjectID(value)
}

func IsValidObjectID(id string) bool {
	return objectIDPattern.MatchString(id)
}

// ParseObjectID parses a path id.
func ParseObjectID(id string) (primitive.ObjectID, error) {
	if !IsValidObjectID(id) {
		return primitive.NilObjectID, ErrInvalidObjectID
	}
	return primitive.ObjectIDFromHex(id)
}

// ParseObjectIDs parses the "ids" array of the bulk endpoints.
func ParseObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for i, id := range ids {
		oid, err := ParseObjectID(id)
		if err != nil {
			return nil, ValidationErrors{fieldError(fmt.Sprintf("ids[%d]", i), "object_id", id, fmt.Sprintf("\"ids[%d]\" must be a valid objectId", i))}
		}
		out = append(out, oid)
	}
	return out, nil
}

package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
)

// Bind decodes a JSON object into dst field by field and then applies the `validate` rules of
// every field, so a single response lists every offending field. dst must be a pointer to a
// struct whose fields carry json tags. Unknown keys are ignored.
func Bind(raw []byte, dst any, v *validator.Validate) error {
	if v == nil {
		v = validator.New()
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a pointer to a struct, got %T", dst)
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err != nil || object == nil {
		return appErrors.WithFields(appErrors.ErrValidation, []appErrors.FieldError{{
			Field:   "body",
			Rule:    "type",
			Message: "request body must be a JSON object",
		}})
	}

	elem := rv.Elem()
	typ := elem.Type()
	var fields []appErrors.FieldError
	typeFailed := make(map[string]bool)

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		name := jsonName(sf)
		if name == "" {
			continue
		}
		value, ok := object[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, elem.Field(i).Addr().Interface()); err != nil {
			fields = append(fields, decodeFailure(name, err))
			typeFailed[name] = true
		}
	}

	fields = append(fields, ruleViolations(elem, v, typeFailed)...)

	if len(fields) > 0 {
		return appErrors.WithFields(appErrors.ErrValidation, fields)
	}
	return nil
}

// Validate applies the `validate` rules of every present field of src, a struct or a pointer to
// one, and reports failures by json field name.
func Validate(src any, v *validator.Validate) error {
	if v == nil {
		v = validator.New()
	}
	elem := reflect.Indirect(reflect.ValueOf(src))
	if elem.Kind() != reflect.Struct {
		return fmt.Errorf("validate target must be a struct, got %T", src)
	}
	if fields := ruleViolations(elem, v, nil); len(fields) > 0 {
		return appErrors.WithFields(appErrors.ErrValidation, fields)
	}
	return nil
}

func ruleViolations(elem reflect.Value, v *validator.Validate, skip map[string]bool) []appErrors.FieldError {
	typ := elem.Type()
	var fields []appErrors.FieldError
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		name := jsonName(sf)
		rules := sf.Tag.Get("validate")
		if name == "" || rules == "" || skip[name] {
			continue
		}
		var target any = elem.Field(i).Interface()
		if p, ok := target.(present); ok {
			val, set := p.presentValue()
			if !set {
				continue
			}
			target = val
		}
		if err := v.Var(target, rules); err != nil {
			fields = append(fields, ruleFailures(name, err)...)
		}
	}
	return fields
}

func jsonName(sf reflect.StructField) string {
	if !sf.IsExported() {
		return ""
	}
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return sf.Name
	}
	return name
}

func decodeFailure(field string, err error) appErrors.FieldError {
	if errors.Is(err, errNull) {
		return appErrors.FieldError{Field: field, Rule: "not_null", Message: "may be omitted but must not be null"}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return appErrors.FieldError{Field: field, Rule: "type", Message: "must be " + kindName(typeErr.Type)}
	}
	return appErrors.FieldError{Field: field, Rule: "type", Message: "has an invalid value"}
}

func kindName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Bool:
		return "a boolean"
	case reflect.Float32, reflect.Float64:
		return "a number"
	default:
		return "a valid value"
	}
}

func ruleFailures(field string, err error) []appErrors.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []appErrors.FieldError{{Field: field, Rule: "invalid", Message: err.Error()}}
	}
	out := make([]appErrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, appErrors.FieldError{Field: field, Rule: fe.Tag(), Message: ruleMessage(fe.Tag(), fe.Param(), fe.Kind())})
	}
	return out
}

func ruleMessage(tag, param string, kind reflect.Kind) string {
	unit := " characters"
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		unit = ""
	}
	switch tag {
	case "required":
		return "field required"
	case "max":
		return fmt.Sprintf("must be at most %s%s", param, unit)
	case "min":
		return fmt.Sprintf("must be at least %s%s", param, unit)
	case "gt":
		return fmt.Sprintf("must be greater than %s", param)
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", param)
	default:
		return fmt.Sprintf("failed the %s rule", tag)
	}
}

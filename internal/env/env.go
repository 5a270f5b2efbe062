package env

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

// Validator is implemented by config structs that need validation.
type Validator interface {
	Validate() error
}

// ErrInvalidValue is returned when an environment variable value cannot be parsed.
type ErrInvalidValue struct {
	Field  string
	EnvVar string
	Value  string
	Err    error
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value for %s=%q (field: %s): %v", e.EnvVar, e.Value, e.Field, e.Err)
}

func (e ErrInvalidValue) Unwrap() error {
	return e.Err
}

// ErrNotStructPointer is returned when Load is called with a non-pointer or non-struct argument.
type ErrNotStructPointer struct {
	Type string
}

func (e ErrNotStructPointer) Error() string {
	return fmt.Sprintf("env.Load: argument must be a pointer to struct, got %s", e.Type)
}

// ErrUnsupportedType is returned when a field has an unsupported type.
type ErrUnsupportedType struct {
	Kind string
}

func (e ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.Kind)
}

// Load fills the struct pointed to by v from environment variables, then
// validates every struct in it that implements Validator, innermost first.
//
// Struct tags:
//   - env:"VAR_NAME" names the variable
//   - default:"value" is used when VAR_NAME is unset
//
// Field types: string, bool, the signed integer kinds, time.Duration
// ("5s", "1m30s") and *time.Location (an IANA name; empty leaves it nil).
//
// A variable that is set but empty is parsed as is: empty strings are kept and
// empty numbers are an error. Unset fields without a default keep their zero value.
func Load(v any) error {
	root := reflect.ValueOf(v)
	if root.Kind() != reflect.Pointer || root.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer{Type: fmt.Sprintf("%T", v)}
	}
	return load(root)
}

// load fills and then validates the struct behind ptr.
func load(ptr reflect.Value) error {
	val := ptr.Elem()
	typ := val.Type()

	for i := range val.NumField() {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != timeType {
			if err := load(field.Addr()); err != nil {
				return err
			}
			continue
		}

		sf := typ.Field(i)
		key := sf.Tag.Get("env")
		if key == "" {
			continue
		}

		raw, ok := os.LookupEnv(key)
		if !ok {
			if raw, ok = sf.Tag.Lookup("default"); !ok {
				continue
			}
		}

		if err := set(field, raw); err != nil {
			return ErrInvalidValue{Field: sf.Name, EnvVar: key, Value: raw, Err: err}
		}
	}

	if validator, ok := ptr.Interface().(Validator); ok {
		return validator.Validate()
	}
	return nil
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	locationType = reflect.TypeFor[*time.Location]()
)

// typed holds parsers for types whose kind alone does not say how to parse them.
var typed = map[reflect.Type]func(string) (reflect.Value, error){
	durationType: func(s string) (reflect.Value, error) {
		d, err := time.ParseDuration(s)
		return reflect.ValueOf(d), err
	},
	locationType: func(s string) (reflect.Value, error) {
		if s == "" {
			return reflect.Zero(locationType), nil
		}
		loc, err := time.LoadLocation(s)
		return reflect.ValueOf(loc), err
	},
}

func set(field reflect.Value, raw string) error {
	if parse, ok := typed[field.Type()]; ok {
		v, err := parse(raw)
		if err != nil {
			return err
		}
		field.Set(v)
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	default:
		return ErrUnsupportedType{Kind: field.Kind().String()}
	}
	return nil
}

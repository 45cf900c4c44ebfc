package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON name
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// Decimals validate as numbers so gte/lte tags apply to them
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// decimals=N caps the number of fractional digits; thresholds are stored as NUMERIC(10, 2)
	_ = v.RegisterValidation("decimals", validateDecimals)

	return v
}

func validateDecimals(fl validator.FieldLevel) bool {
	places, err := strconv.ParseInt(fl.Param(), 10, 32)
	if err != nil {
		return false
	}

	field := fl.Field()
	if field.Kind() != reflect.Float64 {
		return false
	}
	d := decimal.NewFromFloat(field.Float())
	return d.Equal(d.Truncate(int32(places)))
}

// FieldError describes one failed rule
type FieldError struct {
	Field string
	Tag   string
	Param string
	Value interface{}
}

// Message renders a short human readable explanation
func (e FieldError) Message() string {
	switch e.Tag {
	case "required":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + e.Param
	case "gt":
		return "must be greater than " + e.Param
	case "lt":
		return "must be less than " + e.Param
	case "decimals":
		return "must have at most " + e.Param + " decimal places"
	case "max":
		return "must be at most " + e.Param + " characters"
	case "oneof":
		return "must be one of: " + e.Param
	}
	return "failed validation: " + e.Tag
}

// Errors is returned by ValidateStruct when one or more rules fail
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", f.Field, f.Message()))
	}
	return strings.Join(msgs, "; ")
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if s == nil {
		return nil
	}

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return fmt.Errorf("validator: nil %T", s)
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validator: expected a struct, got %T", s)
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]FieldError, 0, len(ve))
		for _, e := range ve {
			fields = append(fields, FieldError{
				Field: e.Field(),
				Tag:   e.Tag(),
				Param: e.Param(),
				Value: e.Value(),
			})
		}
		return &Errors{Fields: fields}
	}
	return fmt.Errorf("validation failed: %w", err)
}

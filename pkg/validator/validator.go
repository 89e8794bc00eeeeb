package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// report json field names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
}

// ValidateStruct returns one entry per failed rule, or nil.
func ValidateStruct(data interface{}) []*ErrorResponse {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
	}

	out := make([]*ErrorResponse, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &ErrorResponse{
			FailedField: fe.Field(),
			Tag:         fe.Tag(),
			Value:       fe.Param(),
		})
	}
	return out
}

// Validate wraps ValidateStruct into a single error with a readable message.
func Validate(data interface{}) error {
	errs := ValidateStruct(data)
	if len(errs) == 0 {
		return nil
	}
	return errors.New(Message(errs[0]))
}

// Message renders one failed rule for API clients.
func Message(e *ErrorResponse) string {
	switch e.Tag {
	case "required", "uuid_required":
		return fmt.Sprintf("%s is required", e.FailedField)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", e.FailedField, e.Value)
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", e.FailedField, e.Value)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.FailedField, e.Value)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.FailedField, e.Value)
	case "dive":
		return fmt.Sprintf("%s is invalid", e.FailedField)
	default:
		return fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", e.FailedField, e.Tag)
	}
}

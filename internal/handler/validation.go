package handler

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
)

func init() {
	// Report validator field errors under their JSON names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

const (
	msgRequired       = "This field is required."
	msgInvalidNumber  = "A valid number is required."
	msgInvalidInteger = "A valid integer is required."
	msgInvalidString  = "Not a valid string."
	msgInvalidBool    = "Must be a valid boolean."
	msgInvalidTime    = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."
)

// bindJSON decodes the request body into dst and runs its binding tags,
// converting every failure into a *domain.ValidationError.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var fieldErrs validator.ValidationErrors

	switch {
	case errors.As(err, &fieldErrs):
		verr := domain.NewValidationError()
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), validationMessage(fe))
		}
		return verr
	case errors.As(err, &typeErr):
		return domain.FieldError(typeErr.Field, typeMessage(typeErr.Type))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.FieldError("non_field_errors", "JSON parse error.")
	case errors.Is(err, io.EOF):
		return domain.FieldError("non_field_errors", "Request body is empty.")
	default:
		return domain.FieldError("non_field_errors", "Invalid request body.")
	}
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return msgInvalidInteger
	case reflect.Float32, reflect.Float64:
		return msgInvalidNumber
	case reflect.Bool:
		return msgInvalidBool
	default:
		return msgInvalidString
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return "Enter a valid email address."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	default:
		return "Invalid value."
	}
}

// parseTime parses an optional RFC 3339 timestamp field.
func parseTime(field string, raw *string, verr *domain.ValidationError) *time.Time {
	if raw == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw))
	if err != nil {
		verr.Add(field, msgInvalidTime)
		return nil
	}
	return &t
}

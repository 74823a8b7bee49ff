// Package validate holds the shared validator instance used by the domain
// mutation helpers to reject bad input before anything is persisted.
package validate

import (
	"reflect"
	"strings"

	"go-workdesk/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// Report field names from the json tag (e.g., `json:"start_date"`)
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

// Struct validates req against its `validate` tags and maps failures to
// INVALID_INPUT AppErrors.
func Struct(req any) error {
	if err := v.Struct(req); err != nil {
		return apperror.MapValidationError(err)
	}
	return nil
}

package importer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their file names rather than Go names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateRecord checks v against its validate tags and returns a
// readable message, or "" when v is valid.
func validateRecord(v any) string {
	err := validate.Struct(v)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		if e.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s must satisfy %s=%s (got %v)", e.Field(), e.Tag(), e.Param(), e.Value()))
		} else {
			messages = append(messages, fmt.Sprintf("%s failed %s (got %v)", e.Field(), e.Tag(), e.Value()))
		}
	}
	return strings.Join(messages, ", ")
}

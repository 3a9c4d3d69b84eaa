package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/aussiebroadwan/customers/pkg/errx"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const maxBodyBytes = 1 << 20

const (
	nameSize     = "Name must be between 2 and 100 characters"
	documentSize = "Document ID must be between 5 and 20 characters"
)

// fieldMessages maps a JSON field and failed tag to the caller-facing message.
var fieldMessages = map[string]map[string]string{
	"name": {
		"notblank": "Name must not be blank",
		"min":      nameSize,
		"max":      nameSize,
	},
	"documentId": {
		"notblank": "Document ID must not be blank",
		"min":      documentSize,
		"max":      documentSize,
	},
	"email": {
		"notblank": "Email must not be blank",
		"email":    "Email must be valid",
	},
	"username": {
		"notblank": "Username is required",
	},
	"password": {
		"notblank": "Password is required",
	},
}

// RequestValidator validates decoded request bodies and reports failures
// keyed by their JSON field names.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() (*RequestValidator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return nil, fmt.Errorf("failed to register notblank validator: %w", err)
	}

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{validate: v}, nil
}

// Struct validates s and returns an errx Validation error listing every
// failing field.
func (rv *RequestValidator) Struct(s any) error {
	err := rv.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return errx.Validation(fields)
}

// DecodeJSON reads a JSON body into dst and validates it.
func (rv *RequestValidator) DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errx.InvalidState("Malformed JSON request body")
	}
	return rv.Struct(dst)
}

func fieldMessage(fe validator.FieldError) string {
	if msgs, ok := fieldMessages[fe.Field()]; ok {
		if msg, ok := msgs[fe.Tag()]; ok {
			return msg
		}
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

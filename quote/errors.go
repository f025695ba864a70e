package quote

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/princinho/climaquote/models"
)

var (
	ErrSignatureRequired = errors.New("a signature is required")
	ErrTermsNotAccepted  = errors.New("the legal terms must be accepted")
	ErrDocumentsRequired = errors.New("identity document and income proof are required for this financing plan")
	ErrLinkInvalid       = errors.New("link not valid or already signed")
	ErrNotSigned         = errors.New("quote is not signed")
)

// ValidationError maps a JSON field name to the rule it failed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid client data (" + strings.Join(parts, ", ") + ")"
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NormalizeClient trims every field.
func NormalizeClient(c models.ClientData) models.ClientData {
	c.Name = strings.TrimSpace(c.Name)
	c.Surname = strings.TrimSpace(c.Surname)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.City = strings.TrimSpace(c.City)
	c.PostalCode = strings.TrimSpace(c.PostalCode)
	c.WorkOrder = strings.TrimSpace(c.WorkOrder)
	return c
}

// ValidateClient returns a *ValidationError listing every failing field.
func ValidateClient(c models.ClientData) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate client: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return &ValidationError{Fields: fields}
}

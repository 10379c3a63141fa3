package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	gpvalidator "github.com/go-playground/validator/v10"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/validator"
)

// NonFieldErrors is the FormErrors key for messages that belong to the form
// as a whole rather than one input.
const NonFieldErrors = "__all__"

const invalidChoiceMessage = "Select a valid choice. That choice is not one of the available choices."

func init() {
	if err := validator.RegisterValidation("order_status", func(fl gpvalidator.FieldLevel) bool {
		return domain.IsValidStatus(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	validator.RegisterMessage("order_status", invalidChoiceMessage)
}

// FormErrors maps HTML input names to the message shown next to them. It is
// returned as an error when submitted data is rejected; nothing has been
// stored in that case.
type FormErrors map[string]string

func (e FormErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (e FormErrors) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// Add records msg for field unless the field already has a message.
func (e FormErrors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// NonField returns the form-wide message, if any.
func (e FormErrors) NonField() string {
	return e[NonFieldErrors]
}

func (e FormErrors) errOrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// validateForm runs struct tag validation and converts the result into
// FormErrors keyed by form name.
func validateForm(input any) (FormErrors, error) {
	errs := FormErrors{}
	err := validator.Validate(input)
	if err == nil {
		return errs, nil
	}
	var verr *validator.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("validate form: %w", err)
	}
	for field, msg := range verr.Fields() {
		errs[field] = msg
	}
	return errs, nil
}

// AsFormErrors extracts FormErrors from err.
func AsFormErrors(err error) (FormErrors, bool) {
	var fe FormErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error kinds. Use errors.Is to branch on the kind and errors.As to reach
// the typed error for details.
var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// ValidationError reports a raw transaction that cannot be placed in the
// star schema.
type ValidationError struct {
	Index int    // position in the input sequence
	Field string // "date", "merchant_name" or "category_name"
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: transaction %d: %s: %v", ErrValidation, e.Index, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError classifies a Transaction.Validate failure.
func NewValidationError(index int, err error) *ValidationError {
	field := ""
	switch {
	case errors.Is(err, ErrZeroDate):
		field = "date"
	case errors.Is(err, ErrEmptyMerchant):
		field = "merchant_name"
	case errors.Is(err, ErrEmptyCategory):
		field = "category_name"
	}
	return &ValidationError{Index: index, Field: field, Err: err}
}

// ConfigurationError reports a budget limit that cannot be divided by.
type ConfigurationError struct {
	Category string
	Limit    decimal.Decimal
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: budget limit for %q must be positive, got %s", ErrConfiguration, e.Category, e.Limit)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

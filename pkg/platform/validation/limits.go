package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	dErrors "gatepass/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed request body size (64 KB).
	MaxBodySize = 64 * 1024
)

// String element length limits, counted in characters.
const (
	// MaxFieldLength bounds visitor, unit, host and employee name fields.
	MaxFieldLength = 200

	// MaxCredentialLength bounds a presented credential string.
	MaxCredentialLength = 4096

	// MaxPlatesLength bounds the optional vehicle plates note.
	MaxPlatesLength = 40

	// MaxURLLength bounds the employee ID document URL.
	MaxURLLength = 2048
)

// CheckRequired fails when value is empty after trimming.
func CheckRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed max characters.
func CheckStringLength(fieldName, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckField applies CheckRequired then CheckStringLength.
func CheckField(fieldName, value string, max int) error {
	if err := CheckRequired(fieldName, value); err != nil {
		return err
	}
	return CheckStringLength(fieldName, value, max)
}

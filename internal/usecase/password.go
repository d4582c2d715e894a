package usecase

import (
	"strings"
	"unicode"

	"github.com/ryanki1/JobStream-Workspace/internal/domain/registration"
)

const minPasswordLen = 8

// ValidatePassword enforces the account password policy: at least 8
// characters with upper case, lower case, a digit, and a special
// character.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return &registration.ValidationError{Field: "password", Reason: "password must be at least 8 characters long"}
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	switch {
	case !upper:
		return &registration.ValidationError{Field: "password", Reason: "password must contain an upper case letter"}
	case !lower:
		return &registration.ValidationError{Field: "password", Reason: "password must contain a lower case letter"}
	case !digit:
		return &registration.ValidationError{Field: "password", Reason: "password must contain a digit"}
	case !special:
		return &registration.ValidationError{Field: "password", Reason: "password must contain a special character"}
	}
	return nil
}

// PasswordRequirements is surfaced alongside validation failures so
// clients can render the policy.
func PasswordRequirements() []string {
	return []string{
		"at least 8 characters",
		"at least one upper case letter",
		"at least one lower case letter",
		"at least one digit",
		"at least one special character",
	}
}

// NormalizeEmail lower-cases and trims an address for lookups and
// uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

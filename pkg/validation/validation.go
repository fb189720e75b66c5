package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Service and policy names are alphanumeric with hyphens/underscores
	serviceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,99}$`)
	policyNameRegex  = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{2,99}$`)
)

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidateServiceName checks if a service name is valid
func ValidateServiceName(name string) error {
	name = SanitizeString(name)

	if name == "" {
		return errors.New("service name cannot be empty")
	}

	if len(name) > 100 {
		return errors.New("service name must not exceed 100 characters")
	}

	if !serviceNameRegex.MatchString(name) {
		return errors.New("service name must start with alphanumeric and contain only letters, numbers, hyphens, and underscores")
	}

	return nil
}

// ValidatePolicyName checks if a policy name is valid
func ValidatePolicyName(name string) error {
	name = SanitizeString(name)

	if name == "" {
		return errors.New("policy name cannot be empty")
	}

	if len(name) < 3 {
		return errors.New("policy name must be at least 3 characters")
	}

	if len(name) > 100 {
		return errors.New("policy name must not exceed 100 characters")
	}

	if !policyNameRegex.MatchString(name) {
		return errors.New("policy name must start with alphanumeric and contain only letters, numbers, hyphens, and underscores")
	}

	return nil
}

// ValidateUsername checks if a username is valid
func ValidateUsername(username string) error {
	username = SanitizeString(username)

	if username == "" {
		return errors.New("username cannot be empty")
	}

	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}

	if len(username) > 50 {
		return errors.New("username must not exceed 50 characters")
	}

	return nil
}

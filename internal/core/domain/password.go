package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// PasswordPolicy is the configurable strength rule applied on registration.
type PasswordPolicy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// DefaultPasswordPolicy mirrors the common identity-framework defaults.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:     8,
		RequireUpper:  true,
		RequireLower:  true,
		RequireDigit:  true,
		RequireSymbol: true,
	}
}

// Check returns ErrWeakCredential wrapped in a ValidationError listing every
// unmet requirement, or nil.
func (p PasswordPolicy) Check(password string) error {
	var (
		hasUpper  bool
		hasLower  bool
		hasDigit  bool
		hasSymbol bool
	)
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	var problems []string
	if len([]rune(password)) < p.MinLength {
		problems = append(problems, fmt.Sprintf("at least %d characters", p.MinLength))
	}
	if p.RequireUpper && !hasUpper {
		problems = append(problems, "an uppercase letter")
	}
	if p.RequireLower && !hasLower {
		problems = append(problems, "a lowercase letter")
	}
	if p.RequireDigit && !hasDigit {
		problems = append(problems, "a digit")
	}
	if p.RequireSymbol && !hasSymbol {
		problems = append(problems, "a symbol")
	}

	if len(problems) == 0 {
		return nil
	}
	return NewValidationError(ErrWeakCredential, map[string]string{
		"password": "must contain " + strings.Join(problems, ", "),
	})
}

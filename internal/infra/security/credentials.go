package security

import (
	"fmt"
	"regexp"
	"strings"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// Deliberately loose shape check: something before an @, something after it,
// and a dot somewhere past the @. Not an RFC 5322 validator.
var emailPattern = regexp.MustCompile(`^.+@.+\..+$`)

// ValidationError represents a single credential policy violation.
type ValidationError struct {
	Code    string
	Message string
}

// Error implements error for ValidationError.
func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// ValidateEmail checks presence and the loose address shape.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Code: "email_required", Message: "Email is required."}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Code: "email_invalid", Message: "Invalid email."}
	}
	return nil
}

// ValidateEmailPresent checks only that an email was supplied. Sign-in uses
// this instead of ValidateEmail: shape rules apply at account creation only.
func ValidateEmailPresent(email string) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Code: "email_required", Message: "Email is required."}
	}
	return nil
}

// ValidatePasswordPresent checks only that a password was supplied.
func ValidatePasswordPresent(password string) error {
	if strings.TrimSpace(password) == "" {
		return &ValidationError{Code: "password_required", Message: "Password is required."}
	}
	return nil
}

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// DefaultPasswordValidator enforces the signup password policy: present,
// at least 8 characters, with one lowercase, one uppercase, one digit, and
// one symbol. All four classes are required; order does not matter.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		RequiredRule(),
		MinLengthRule(8),
		RequireLowerRule(),
		RequireUpperRule(),
		RequireDigitRule(),
		RequireSymbolRule(),
	)
}

// RequiredRule ensures the password is non-empty after trimming.
func RequiredRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if strings.TrimSpace(password) == "" {
			return &ValidationError{Code: "password_required", Message: "Password is required."}
		}
		return nil
	})
}

// MinLengthRule ensures the password has at least min characters.
func MinLengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len([]rune(password)) < min {
			return &ValidationError{
				Code:    "password_min_length",
				Message: fmt.Sprintf("Password must be at least %d characters long.", min),
			}
		}
		return nil
	})
}

// RequireLowerRule ensures the password contains at least one lowercase letter.
func RequireLowerRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if r >= 'a' && r <= 'z' {
				return nil
			}
		}
		return &ValidationError{
			Code:    "password_lowercase",
			Message: "Password must include at least one lowercase letter.",
		}
	})
}

// RequireUpperRule ensures the password contains at least one uppercase letter.
func RequireUpperRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if r >= 'A' && r <= 'Z' {
				return nil
			}
		}
		return &ValidationError{
			Code:    "password_uppercase",
			Message: "Password must include at least one uppercase letter.",
		}
	})
}

// RequireDigitRule ensures the password contains at least one digit.
func RequireDigitRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if r >= '0' && r <= '9' {
				return nil
			}
		}
		return &ValidationError{
			Code:    "password_digit",
			Message: "Password must include at least one number.",
		}
	})
}

// RequireSymbolRule ensures the password contains at least one character
// outside [A-Za-z0-9]. Underscore counts as a symbol.
func RequireSymbolRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if isSymbol(r) {
				return nil
			}
		}
		return &ValidationError{
			Code:    "password_symbol",
			Message: "Password must include at least one symbol.",
		}
	})
}

func isSymbol(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return false
	case r >= 'A' && r <= 'Z':
		return false
	case r >= '0' && r <= '9':
		return false
	}
	return true
}

// RequirePasswordStrengthRule enforces a minimum zxcvbn score to reject weak
// passwords. Disabled when minScore is zero or negative.
func RequirePasswordStrengthRule(minScore int, userInputs ...string) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if minScore <= 0 {
			return nil
		}
		if minScore > 4 {
			minScore = 4
		}

		result := zxcvbn.PasswordStrength(password, userInputs)
		if result.Score >= minScore {
			return nil
		}

		return &ValidationError{
			Code:    "password_weak",
			Message: "Password is too weak; choose a more complex value.",
		}
	})
}

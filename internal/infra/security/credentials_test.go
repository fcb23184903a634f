package security

import (
	"errors"
	"testing"
)

func TestValidateEmailAcceptsLooseShapes(t *testing.T) {
	for _, email := range []string{
		"a@b.co",
		"john.doe@example.com",
		"weird name@host.tld",
		"a@b@c.d",
	} {
		if err := ValidateEmail(email); err != nil {
			t.Fatalf("ValidateEmail(%q) returned error: %v", email, err)
		}
	}
}

func TestValidateEmailRejects(t *testing.T) {
	cases := map[string]string{
		"":            "email_required",
		"   ":         "email_required",
		"bad-email":   "email_invalid",
		"no-at.com":   "email_invalid",
		"nodot@host":  "email_invalid",
		"@no.local":   "email_invalid",
		"trailing@.":  "email_invalid",
		"user@nodots": "email_invalid",
	}

	for email, wantCode := range cases {
		err := ValidateEmail(email)
		if err == nil {
			t.Fatalf("ValidateEmail(%q) expected error", email)
		}
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("ValidateEmail(%q) returned %T, want *ValidationError", email, err)
		}
		if vErr.Code != wantCode {
			t.Fatalf("ValidateEmail(%q) code = %s, want %s", email, vErr.Code, wantCode)
		}
	}
}

func TestDefaultPasswordValidatorAccepts(t *testing.T) {
	validator := DefaultPasswordValidator()

	for _, password := range []string{
		"Abcdef1!",
		"1aB~aaaaa",
		"PASSword1 ",
		"Sup3r_Secret", // underscore counts as a symbol
	} {
		if err := validator.Validate(password); err != nil {
			t.Fatalf("Validate(%q) returned error: %v", password, err)
		}
	}
}

func TestDefaultPasswordValidatorRejects(t *testing.T) {
	validator := DefaultPasswordValidator()

	cases := map[string]string{
		"":           "password_required",
		"short1!A":   "",                    // control: valid, exactly 8 chars
		"Abcde1!":    "password_min_length", // 7 chars
		"abcdefg1!":  "password_uppercase",
		"ABCDEFG1!":  "password_lowercase",
		"Abcdefgh!":  "password_digit",
		"Abcdefgh1":  "password_symbol",
		"Abcdefgh1_": "", // underscore satisfies the symbol class
	}

	for password, wantCode := range cases {
		err := validator.Validate(password)
		if wantCode == "" {
			if err != nil {
				t.Fatalf("Validate(%q) returned error: %v", password, err)
			}
			continue
		}
		if err == nil {
			t.Fatalf("Validate(%q) expected error %s", password, wantCode)
		}
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Validate(%q) returned %T, want *ValidationError", password, err)
		}
		if vErr.Code != wantCode {
			t.Fatalf("Validate(%q) code = %s, want %s", password, vErr.Code, wantCode)
		}
	}
}

func TestPresenceChecks(t *testing.T) {
	if err := ValidateEmailPresent("bad-email"); err != nil {
		t.Fatalf("ValidateEmailPresent should not check shape: %v", err)
	}
	if err := ValidateEmailPresent(" "); err == nil {
		t.Fatal("ValidateEmailPresent expected error for blank email")
	}
	if err := ValidatePasswordPresent("short"); err != nil {
		t.Fatalf("ValidatePasswordPresent should not check strength: %v", err)
	}
	if err := ValidatePasswordPresent(""); err == nil {
		t.Fatal("ValidatePasswordPresent expected error for blank password")
	}
}

func TestRequirePasswordStrengthRule(t *testing.T) {
	rule := RequirePasswordStrengthRule(3)

	if err := rule.Validate("password"); err == nil {
		t.Fatal("expected weak password to be rejected")
	}
	if err := rule.Validate("correct horse battery staple"); err != nil {
		t.Fatalf("expected strong passphrase to pass: %v", err)
	}

	disabled := RequirePasswordStrengthRule(0)
	if err := disabled.Validate("password"); err != nil {
		t.Fatalf("disabled rule should accept anything: %v", err)
	}
}

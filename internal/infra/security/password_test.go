package security

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompareSuccess(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	encoded, err := hasher.Hash("Abcdef1!")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if encoded == "" {
		t.Fatal("Hash returned empty string")
	}
	if !strings.HasPrefix(encoded, "$2") {
		t.Fatalf("unexpected hash format: %q", encoded)
	}

	ok, err := hasher.Compare("Abcdef1!", encoded)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if !ok {
		t.Fatal("Compare returned false for correct password")
	}
}

func TestCompareIncorrectPassword(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	encoded, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	ok, err := hasher.Compare("Tr0ub4dor&3", encoded)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if ok {
		t.Fatal("Compare returned true for incorrect password")
	}
}

func TestHashProducesUniqueSalts(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("Abcdef1!")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := hasher.Hash("Abcdef1!")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if first == second {
		t.Fatal("two hashes of the same password should differ")
	}

	for _, encoded := range []string{first, second} {
		ok, err := hasher.Compare("Abcdef1!", encoded)
		if err != nil {
			t.Fatalf("Compare returned error: %v", err)
		}
		if !ok {
			t.Fatalf("Compare returned false for %q", encoded)
		}
	}
}

func TestCompareEmptyInputs(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	ok, err := hasher.Compare("", "")
	if err != nil {
		t.Fatalf("Compare returned error for empty inputs: %v", err)
	}
	if ok {
		t.Fatal("Compare should return false for empty inputs")
	}
}

func TestCompareMalformedHash(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	if _, err := hasher.Compare("password", "not-a-bcrypt-hash"); err == nil {
		t.Fatal("Compare expected to return error for malformed hash")
	}
}

func TestNewPasswordHasherClampsInvalidCost(t *testing.T) {
	hasher := NewPasswordHasher(99)
	if hasher.cost != DefaultBcryptCost {
		t.Fatalf("expected default cost %d, got %d", DefaultBcryptCost, hasher.cost)
	}
}

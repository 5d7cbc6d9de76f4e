package crypto

import "testing"

func TestValidatePasswordStrength_ValidPasswords(t *testing.T) {
	validPasswords := []string{
		"Test123!@#",
		"Password1$",
		"SecureP@ss1",
		"Str0ng#Pass",
	}

	for _, password := range validPasswords {
		if err := ValidatePasswordStrength(password); err != nil {
			t.Errorf("Password %s should be valid but got error: %v", password, err)
		}
	}
}

func TestValidatePasswordStrength_Failures(t *testing.T) {
	cases := map[string]error{
		"Test1!":     ErrPasswordTooShort,
		"test123!@#": ErrPasswordNoUpper,
		"TEST123!@#": ErrPasswordNoLower,
		"TestTest!@": ErrPasswordNoNumber,
		"Test12345A": ErrPasswordNoSpecialChar,
	}

	for password, want := range cases {
		if err := ValidatePasswordStrength(password); err != want {
			t.Errorf("Expected %v for %s, got %v", want, password, err)
		}
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Secret123!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "Secret123!" {
		t.Fatal("hash must not equal the plain password")
	}
	if !VerifyPassword(hash, "Secret123!") {
		t.Error("expected password to verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}

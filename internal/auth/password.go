package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// ValidatePasswordStrength enforces the registration password policy:
// at least 8 characters with upper case, lower case and a digit.
func ValidatePasswordStrength(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters long"
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		return false, "Password must contain at least one uppercase letter"
	}
	if !strings.ContainsFunc(password, unicode.IsLower) {
		return false, "Password must contain at least one lowercase letter"
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return false, "Password must contain at least one digit"
	}
	return true, ""
}

package auth

import "golang.org/x/crypto/bcrypt"

// DefaultCost is the bcrypt cost used for new password hashes.
const DefaultCost = 12

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword compares a password with a stored hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidPassword checks if a password meets the length requirement.
func ValidPassword(password string) bool {
	return len(password) >= MinPasswordLength
}

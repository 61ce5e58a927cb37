package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword generates a salted bcrypt hash from a plaintext password.
// Credentials are never stored or compared verbatim.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a plaintext password with a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

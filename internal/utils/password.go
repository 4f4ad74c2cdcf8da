package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword produces the hash stored on a local identity's credential
// record. Firebase identities never reach it.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether password matches a credential's stored
// hash. Any bcrypt error, including a malformed hash, counts as a mismatch.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

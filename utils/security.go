package utils

import (
	"crypto/rand"
	"encoding/base64"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword salts and hashes a plaintext password. The same plaintext
// yields a different hash on every call; CheckPasswordHash still verifies
// each of them. The plaintext is never stored or logged.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

// CheckPasswordHash reports whether password is the plaintext that produced
// hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// NewSessionToken returns an opaque token for the session cookie.
func NewSessionToken() string {
	return uuid.NewString()
}

// GenerateToken returns length random bytes, base64url encoded. Used for
// CSRF tokens and password reset codes.
func GenerateToken(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	return base64.URLEncoding.EncodeToString(bytes)
}

// Package crypto implements credential hashing and verification for accounts.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (local single-user device, modest cost).
const (
	argonTime    uint32 = 2
	argonMemory  uint32 = 32 * 1024 // 32 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashCredential returns the Argon2id hash of credential using the provided salt.
func HashCredential(credential, salt []byte) []byte {
	return argon2.IDKey(credential, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyCredential verifies credential against the expected hash and salt.
func VerifyCredential(credential, salt, expected []byte) bool {
	got := HashCredential(credential, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}

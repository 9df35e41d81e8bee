package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// pbkdf2Iterations matches the iteration count used when the demo
	// principal's digest was first produced. Changing it invalidates
	// every stored digest.
	pbkdf2Iterations = 100000

	pbkdf2KeyLength = sha256.Size
)

// pbkdf2Salt is shared by all digests. A fixed salt is acceptable only
// because exactly one demo account exists; any real deployment must
// generate and store a per-principal random salt instead.
var pbkdf2Salt = []byte("static-salt-for-demo")

// PasswordHasher derives deterministic PBKDF2-HMAC-SHA256 digests.
// Hash is a pure function over the plaintext: the same input always
// yields the same hex digest.
type PasswordHasher struct {
	iterations int
}

// NewPasswordHasher creates a new PasswordHasher with the default
// iteration count.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{
		iterations: pbkdf2Iterations,
	}
}

// Hash returns the hex-encoded PBKDF2 digest of password.
func (h *PasswordHasher) Hash(password string) string {
	key := pbkdf2.Key([]byte(password), pbkdf2Salt, h.iterations, pbkdf2KeyLength, sha256.New)
	return hex.EncodeToString(key)
}

// Verify reports whether password hashes to digest.
func (h *PasswordHasher) Verify(password, digest string) bool {
	computed := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// KeyPrefix starts every generated admin key.
const KeyPrefix = "fiveplanner_"

// GenerateAdminKey creates a new admin key with the KeyPrefix followed by 32
// URL-safe random characters. It returns the plaintext key and its bcrypt hash
// for the configuration file.
func GenerateAdminKey() (plaintext, hash string, err error) {
	b := make([]byte, 24) // 24 bytes -> 32 base64url chars
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generating random bytes: %w", err)
	}
	plaintext = KeyPrefix + base64.RawURLEncoding.EncodeToString(b)

	h, err := HashKey(plaintext)
	if err != nil {
		return "", "", err
	}
	return plaintext, h, nil
}

// HashKey returns the bcrypt hash of a plaintext key.
func HashKey(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing key: %w", err)
	}
	return string(h), nil
}

// Verifier checks presented keys against a configured bcrypt hash. The last
// accepted key is remembered by digest so repeat requests skip bcrypt.
type Verifier struct {
	hash []byte

	mu       sync.Mutex
	accepted [sha256.Size]byte
	cached   bool
}

// NewVerifier returns a verifier for hash. An empty hash disables checking.
func NewVerifier(hash string) *Verifier {
	return &Verifier{hash: []byte(hash)}
}

// Enabled reports whether a hash is configured.
func (v *Verifier) Enabled() bool {
	return len(v.hash) > 0
}

// Verify reports whether key matches the configured hash.
func (v *Verifier) Verify(key string) bool {
	if !v.Enabled() || key == "" {
		return false
	}
	digest := sha256.Sum256([]byte(key))

	v.mu.Lock()
	hit := v.cached && subtle.ConstantTimeCompare(digest[:], v.accepted[:]) == 1
	v.mu.Unlock()
	if hit {
		return true
	}

	if bcrypt.CompareHashAndPassword(v.hash, []byte(key)) != nil {
		return false
	}
	v.mu.Lock()
	v.accepted, v.cached = digest, true
	v.mu.Unlock()
	return true
}

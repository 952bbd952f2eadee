package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password schemes accepted by NewHasher.
const (
	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"
)

// Hasher produces and verifies password digests.
//
// The sha256 scheme is a deterministic, unsalted hex digest kept for
// compatibility with existing records. The bcrypt scheme is opt-in. Verify
// accepts either format regardless of the configured scheme.
type Hasher struct {
	scheme string
	cost   int
}

// NewHasher returns a Hasher for scheme. cost is only used by bcrypt.
func NewHasher(scheme string, cost int) *Hasher {
	if scheme == "" {
		scheme = SchemeSHA256
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{scheme: scheme, cost: cost}
}

// Scheme reports the scheme used for new digests.
func (h *Hasher) Scheme() string {
	return h.scheme
}

// Hash returns the digest of plain under the configured scheme.
func (h *Hasher) Hash(plain string) (string, error) {
	switch h.scheme {
	case SchemeSHA256:
		return SHA256Digest(plain), nil
	case SchemeBcrypt:
		b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
		if err != nil {
			return "", fmt.Errorf("hashing password: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unknown password scheme %q", h.scheme)
	}
}

// Verify reports whether plain matches digest.
func (h *Hasher) Verify(plain, digest string) bool {
	if isBcrypt(digest) {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
	}
	want := SHA256Digest(plain)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(digest))) == 1
}

// SHA256Digest returns the lowercase hex sha256 of plain.
func SHA256Digest(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") ||
		strings.HasPrefix(digest, "$2b$") ||
		strings.HasPrefix(digest, "$2y$")
}

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"bugscape/internal/logging"
)

// PasswordHasher hashes and verifies passwords. Verify never fails loudly:
// a malformed stored hash is reported as a mismatch.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) bool
}

// Argon2Params tunes the argon2id key derivation. Memory is in KiB.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params derives a 32-byte key using 64 MiB of memory.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  1,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// upper bounds accepted when parsing a stored hash
const (
	maxArgon2Memory     = 1024 * 1024
	maxArgon2Iterations = 16
	maxArgon2KeyLength  = 128
)

var errMalformedHash = errors.New("malformed password hash")

// Argon2Hasher produces self-describing argon2id hashes in the PHC string
// format, so the salt and parameters travel with the hash. Legacy bcrypt
// hashes are still accepted by Verify.
type Argon2Hasher struct {
	params Argon2Params
	logger logging.Logger
}

var _ PasswordHasher = (*Argon2Hasher)(nil)

// NewArgon2Hasher creates a hasher with the given parameters.
func NewArgon2Hasher(params Argon2Params, logger logging.Logger) *Argon2Hasher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Argon2Hasher{params: params, logger: logger}
}

// Hash returns $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt>$<key>.
func (h *Argon2Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches hash.
func (h *Argon2Hasher) Verify(hash, plaintext string) bool {
	if strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$") {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
		if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			h.logger.Warn(context.Background(), "could not validate password", "error", err)
		}
		return err == nil
	}

	params, salt, key, err := decodeArgon2Hash(hash)
	if err != nil {
		h.logger.Warn(context.Background(), "could not validate password", "error", err)
		return false
	}

	candidate := argon2.IDKey([]byte(plaintext), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1
}

func decodeArgon2Hash(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: %v", errMalformedHash, err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: unsupported version %d", errMalformedHash, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("%w: %v", errMalformedHash, err)
	}
	if p.Memory == 0 || p.Memory > maxArgon2Memory || p.Iterations == 0 || p.Iterations > maxArgon2Iterations || p.Parallelism == 0 {
		return p, nil, nil, fmt.Errorf("%w: parameters out of range", errMalformedHash)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, fmt.Errorf("%w: bad salt", errMalformedHash)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > maxArgon2KeyLength {
		return p, nil, nil, fmt.Errorf("%w: bad key", errMalformedHash)
	}

	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))
	return p, salt, key, nil
}

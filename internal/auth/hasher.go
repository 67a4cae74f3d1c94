// Package auth provides the credential primitives of the service:
// password hashing and session-token signing.  Both are pure over their
// inputs and safe for concurrent use; all tunable parameters are fixed at
// construction time.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters following the OWASP recommendation.  They are
// embedded in every hash, so they can change between releases without
// invalidating stored credentials.
const (
	argonTime    = 1         // iterations
	argonMemory  = 64 * 1024 // 64 MB
	argonThreads = 4         // parallelism
	argonSaltLen = 16        // salt length in bytes
	argonKeyLen  = 32        // derived key length in bytes
)

// Hasher hashes and verifies passwords with argon2id.  The zero value is
// ready to use.
type Hasher struct{}

func NewHasher() *Hasher { return &Hasher{} }

// Hash derives an argon2id hash of the plaintext with a fresh random salt
// and encodes it in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
//
// It fails only if the random source is exhausted.
func (h *Hasher) Hash(plain string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(plain), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plain matches the encoded hash.  A malformed,
// truncated or foreign-format hash yields false, the same result as a
// wrong password; callers get no signal distinguishing the two.  The
// comparison is constant time.
func (h *Hasher) Verify(encoded, plain string) bool {
	params, salt, key, ok := decodeHash(encoded)
	if !ok {
		return false
	}
	computed := argon2.IDKey([]byte(plain), salt, params.time, params.memory, params.threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1
}

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

// decodeHash parses a PHC argon2id string back into its parameters, salt
// and derived key.  Any structural problem reports !ok.
func decodeHash(encoded string) (argonParams, []byte, []byte, bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return argonParams{}, nil, nil, false
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return argonParams{}, nil, nil, false
	}
	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return argonParams{}, nil, nil, false
	}
	// argon2.IDKey panics on a zero time cost and needs at least 8 KiB
	// of memory per thread; parameters outside those bounds cannot have
	// been produced by Hash, so the string is malformed.
	if time == 0 || threads == 0 || threads > 255 {
		return argonParams{}, nil, nil, false
	}
	if memory < 8*threads || memory > 4*1024*1024 {
		return argonParams{}, nil, nil, false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return argonParams{}, nil, nil, false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return argonParams{}, nil, nil, false
	}
	return argonParams{memory: memory, time: time, threads: uint8(threads)}, salt, key, true
}

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazario/auth-service/internal/auth"
)

func TestHash(t *testing.T) {
	hasher := auth.NewHasher()

	t.Run("produces self-describing hash", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
		assert.Len(t, strings.Split(hash, "$"), 6)
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})
}

func TestVerify(t *testing.T) {
	hasher := auth.NewHasher()

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)
		assert.True(t, hasher.Verify(hash, "correctpassword"))
	})

	t.Run("wrong password fails", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)
		assert.False(t, hasher.Verify(hash, "wrongpassword"))
	})

	t.Run("round trip holds for both hashes of a password", func(t *testing.T) {
		hash1, err := hasher.Hash("pw")
		require.NoError(t, err)
		hash2, err := hasher.Hash("pw")
		require.NoError(t, err)
		assert.True(t, hasher.Verify(hash1, "pw"))
		assert.True(t, hasher.Verify(hash2, "pw"))
	})

	// Verify exposes a single boolean: a corrupt hash and a wrong
	// password are indistinguishable to the caller.
	t.Run("malformed hash is just false", func(t *testing.T) {
		assert.False(t, hasher.Verify("not-a-valid-hash", "password"))
		assert.False(t, hasher.Verify("", "password"))
		assert.False(t, hasher.Verify("$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA", "password"))
		assert.False(t, hasher.Verify("$argon2id$vXX$m=65536,t=1,p=4$c2FsdA$aGFzaA", "password"))
		assert.False(t, hasher.Verify("$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA", "password"))
	})

	// Parameters Hash can never have written must be rejected during
	// parsing: argon2 panics on a zero time cost, so letting them
	// through would crash Verify instead of returning false.
	t.Run("out-of-range params are just false", func(t *testing.T) {
		for _, bad := range []string{
			"$argon2id$v=19$m=65536,t=0,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
			"$argon2id$v=19$m=65536,t=1,p=0$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
			"$argon2id$v=19$m=65536,t=1,p=999$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
			"$argon2id$v=19$m=0,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
			"$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		} {
			assert.NotPanics(t, func() {
				assert.False(t, hasher.Verify(bad, "password"), "hash %q", bad)
			}, "hash %q", bad)
		}
	})
}

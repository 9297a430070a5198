package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2HashService(t *testing.T) {
	svc := NewArgon2HashService()

	t.Run("hash and verify round trip", func(t *testing.T) {
		hash, err := svc.Hash("correct-horse-battery-staple")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

		ok, err := svc.Verify("correct-horse-battery-staple", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		hash, err := svc.Hash("password1")
		require.NoError(t, err)

		ok, err := svc.Verify("password2", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		h1, err := svc.Hash("password")
		require.NoError(t, err)
		h2, err := svc.Hash("password")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2, "salts must differ")
	})

	t.Run("malformed hash errors", func(t *testing.T) {
		_, err := svc.Verify("password", "not-a-hash")
		assert.Error(t, err)
	})

	t.Run("unsupported algorithm errors", func(t *testing.T) {
		_, err := svc.Verify("password", "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA")
		assert.Error(t, err)
	})
}

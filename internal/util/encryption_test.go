package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0000000000000000000000000000000000000000000000000000000000000001"

func TestEncryptDecrypt(t *testing.T) {
	t.Run("round trips a token", func(t *testing.T) {
		sealed, err := Encrypt(testKey, "oauth-access-token")
		require.NoError(t, err)
		assert.NotEqual(t, "oauth-access-token", sealed)

		opened, err := Decrypt(testKey, sealed)
		require.NoError(t, err)
		assert.Equal(t, "oauth-access-token", opened)
	})

	t.Run("same plaintext encrypts differently each time", func(t *testing.T) {
		a, _ := Encrypt(testKey, "token")
		b, _ := Encrypt(testKey, "token")
		assert.NotEqual(t, a, b)
	})

	t.Run("rejects a short key", func(t *testing.T) {
		_, err := Encrypt("deadbeef", "token")
		assert.Error(t, err)
	})

	t.Run("rejects a non-hex key", func(t *testing.T) {
		_, err := Encrypt(strings.Repeat("zz", 32), "token")
		assert.Error(t, err)
	})

	t.Run("decryption fails with the wrong key", func(t *testing.T) {
		otherKey := strings.Repeat("ab", 32)
		sealed, err := Encrypt(testKey, "token")
		require.NoError(t, err)

		_, err = Decrypt(otherKey, sealed)
		assert.Error(t, err)
	})

	t.Run("decryption fails on tampered ciphertext", func(t *testing.T) {
		sealed, err := Encrypt(testKey, "token")
		require.NoError(t, err)

		tampered := "A" + sealed[1:]
		if tampered == sealed {
			tampered = "B" + sealed[1:]
		}
		_, err = Decrypt(testKey, tampered)
		assert.Error(t, err)
	})

	t.Run("rejects truncated ciphertext", func(t *testing.T) {
		_, err := Decrypt(testKey, "c2hvcnQ=")
		assert.Error(t, err)
	})
}

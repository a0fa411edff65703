package krypto_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PRATIKK0709/PassRusted/internal/krypto"
)

func TestHashMasterPassword(t *testing.T) {
	t.Parallel()

	password := []byte("correct horse battery staple")

	t.Run("produces a self-describing argon2id hash", func(t *testing.T) {
		t.Parallel()

		hash, salt, err := krypto.HashMasterPassword(context.Background(), password, testParams())
		require.NoError(t, err)
		require.Len(t, salt, krypto.MasterSaltSize)
		require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=8,t=1,p=1$"))

		params, err := krypto.HashParams(hash)
		require.NoError(t, err)
		require.Equal(t, testParams(), params)
	})

	t.Run("key-derivation salt is independent of the hash salt", func(t *testing.T) {
		t.Parallel()

		hash, keySalt, err := krypto.HashMasterPassword(context.Background(), password, testParams())
		require.NoError(t, err)

		// The embedded salt is the 5th $-separated field.
		fields := strings.Split(hash, "$")
		require.Len(t, fields, 6)
		require.NotContains(t, fields[4], string(keySalt))

		key, err := krypto.DeriveKeyFromPassword(context.Background(), password, keySalt, testParams(), krypto.MasterKeySize)
		require.NoError(t, err)
		require.NotContains(t, hash, string(key))
	})

	t.Run("same password hashes differently on each call", func(t *testing.T) {
		t.Parallel()

		hash1, _, err := krypto.HashMasterPassword(context.Background(), password, testParams())
		require.NoError(t, err)

		hash2, _, err := krypto.HashMasterPassword(context.Background(), password, testParams())
		require.NoError(t, err)

		require.NotEqual(t, hash1, hash2)
	})

	t.Run("returns error when nil password", func(t *testing.T) {
		t.Parallel()

		_, _, err := krypto.HashMasterPassword(context.Background(), nil, testParams())
		require.EqualError(t, err, "password cannot be nil")
	})
}

func TestVerifyMasterPassword(t *testing.T) {
	t.Parallel()

	password := []byte("correct horse battery staple")

	t.Run("accepts matching password", func(t *testing.T) {
		t.Parallel()

		hash, _, err := krypto.HashMasterPassword(context.Background(), password, testParams())
		require.NoError(t, err)

		ok, err := krypto.VerifyMasterPassword(context.Background(), password, hash)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("rejects wrong password without error", func(t *testing.T) {
		t.Parallel()

		hash, _, err := krypto.HashMasterPassword(context.Background(), password, testParams())
		require.NoError(t, err)

		ok, err := krypto.VerifyMasterPassword(context.Background(), []byte("wrong password"), hash)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("returns error when malformed hash", func(t *testing.T) {
		t.Parallel()

		tests := map[string]string{
			"empty":                 "",
			"not a phc string":      "plaintext",
			"too few fields":        "$argon2id$v=19$m=8,t=1,p=1$c2FsdA",
			"unsupported algorithm": "$bcrypt$v=19$m=8,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$ZGlnZXN0",
			"bad version field":     "$argon2id$version=19$m=8,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$ZGlnZXN0",
			"wrong version":         "$argon2id$v=18$m=8,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$ZGlnZXN0",
			"bad parameter field":   "$argon2id$v=19$mem=8$c2FsdHNhbHRzYWx0c2FsdA$ZGlnZXN0",
			"invalid salt base64":   "$argon2id$v=19$m=8,t=1,p=1$!!!$ZGlnZXN0",
			"salt too short":        "$argon2id$v=19$m=8,t=1,p=1$c2FsdA$ZGlnZXN0",
			"invalid digest base64": "$argon2id$v=19$m=8,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$!!!",
		}
		for name, hash := range tests {
			hash := hash
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				_, err := krypto.VerifyMasterPassword(context.Background(), password, hash)
				require.Error(t, err)
			})
		}
	})

	t.Run("verifies hashes across parameter sets", func(t *testing.T) {
		t.Parallel()

		params := krypto.Argon2idParams{MemoryKiB: 16, NumIterations: 2, NumThreads: 2}

		hash, _, err := krypto.HashMasterPassword(context.Background(), password, params)
		require.NoError(t, err)

		ok, err := krypto.VerifyMasterPassword(context.Background(), password, hash)
		require.NoError(t, err)
		require.True(t, ok)
	})
}

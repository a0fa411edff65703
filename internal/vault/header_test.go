package vault_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PRATIKK0709/PassRusted/internal/vault"
)

func testHeader() *vault.Header {
	header := &vault.Header{
		Version:    vault.VersionV1,
		MasterHash: "$argon2id$v=19$m=8,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$ZGlnZXN0ZGlnZXN0ZGlnZXN0",
	}
	copy(header.Salt[:], "0123456789abcdef0123456789abcdef")

	return header
}

func TestHeaderMarshalBinary(t *testing.T) {
	t.Parallel()

	t.Run("round trips", func(t *testing.T) {
		t.Parallel()

		header := testHeader()

		data, err := header.MarshalBinary()
		require.NoError(t, err)

		var decoded vault.Header
		require.NoError(t, decoded.UnmarshalBinary(data))
		require.Equal(t, header, &decoded)
	})

	t.Run("returns error when unknown version", func(t *testing.T) {
		t.Parallel()

		header := testHeader()
		header.Version = vault.VersionUnknown

		_, err := header.MarshalBinary()
		require.EqualError(t, err, "invalid: version: expected v1, got v0")
	})

	t.Run("returns error when empty master hash", func(t *testing.T) {
		t.Parallel()

		header := testHeader()
		header.MasterHash = ""

		_, err := header.MarshalBinary()
		require.EqualError(t, err, "invalid: master hash cannot be empty")
	})
}

func TestHeaderUnmarshalBinary(t *testing.T) {
	t.Parallel()

	t.Run("returns error when data too short", func(t *testing.T) {
		t.Parallel()

		var header vault.Header
		err := header.UnmarshalBinary(make([]byte, 10))
		require.EqualError(t, err, "invalid length: got 10, expected at least 38")
	})

	t.Run("returns error when hash length disagrees with data length", func(t *testing.T) {
		t.Parallel()

		data, err := testHeader().MarshalBinary()
		require.NoError(t, err)

		var header vault.Header
		err = header.UnmarshalBinary(data[:len(data)-1])
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid length")
	})

	t.Run("rejects a future version instead of interpreting it", func(t *testing.T) {
		t.Parallel()

		original := testHeader()
		original.Version = vault.VersionV1

		data, err := original.MarshalBinary()
		require.NoError(t, err)

		// Version is the first little-endian u32.
		data[0] = 2

		var header vault.Header
		err = header.UnmarshalBinary(data)
		require.EqualError(t, err, "invalid: version: expected v1, got v2")
	})
}

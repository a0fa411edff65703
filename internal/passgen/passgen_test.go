package passgen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PRATIKK0709/PassRusted/internal/passgen"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("returns error when length below minimum", func(t *testing.T) {
		t.Parallel()

		_, err := passgen.Generate(3, false)
		require.EqualError(t, err, "password length must be at least 4 characters, got 3")
	})

	t.Run("accepts the minimum length", func(t *testing.T) {
		t.Parallel()

		password, err := passgen.Generate(passgen.MinLength, true)
		require.NoError(t, err)
		require.Len(t, password, passgen.MinLength)
	})

	t.Run("respects the requested length", func(t *testing.T) {
		t.Parallel()

		for _, length := range []int{4, 8, 16, 64} {
			password, err := passgen.Generate(length, true)
			require.NoError(t, err)
			require.Len(t, password, length)
		}
	})

	t.Run("contains at least one of each character class", func(t *testing.T) {
		t.Parallel()

		for i := 0; i < 20; i++ {
			password, err := passgen.Generate(passgen.DefaultLength, true)
			require.NoError(t, err)

			require.True(t, strings.ContainsAny(password, "abcdefghijklmnopqrstuvwxyz"), "missing lowercase in %q", password)
			require.True(t, strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"), "missing uppercase in %q", password)
			require.True(t, strings.ContainsAny(password, "0123456789"), "missing digit in %q", password)
			require.True(t, strings.ContainsAny(password, "!@#$%^&*()-_=+[]{}|;:,.<>?"), "missing symbol in %q", password)
		}
	})

	t.Run("excludes symbols unless requested", func(t *testing.T) {
		t.Parallel()

		for i := 0; i < 20; i++ {
			password, err := passgen.Generate(passgen.DefaultLength, false)
			require.NoError(t, err)
			require.False(t, strings.ContainsAny(password, "!@#$%^&*()-_=+[]{}|;:,.<>?"), "unexpected symbol in %q", password)
		}
	})

	t.Run("successive passwords differ", func(t *testing.T) {
		t.Parallel()

		password1, err := passgen.Generate(passgen.DefaultLength, true)
		require.NoError(t, err)

		password2, err := passgen.Generate(passgen.DefaultLength, true)
		require.NoError(t, err)

		require.NotEqual(t, password1, password2)
	})
}

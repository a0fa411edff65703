package cmd

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubPasswordReader struct {
	passwords  [][]byte
	err        error
	isTerminal bool
	calls      int
}

func (s *stubPasswordReader) IsTerminal() bool {
	return s.isTerminal
}

func (s *stubPasswordReader) ReadPassword(prompt string, output io.Writer) ([]byte, error) {
	if _, err := io.WriteString(output, prompt); err != nil {
		return nil, err
	}

	if s.err != nil {
		return nil, s.err
	}

	if s.calls >= len(s.passwords) {
		return nil, errors.New("no more passwords")
	}

	password := s.passwords[s.calls]
	s.calls++

	return password, nil
}

func TestPromptPassword(t *testing.T) {
	t.Parallel()

	t.Run("returns the entered password", func(t *testing.T) {
		t.Parallel()

		reader := &stubPasswordReader{
			isTerminal: true,
			passwords:  [][]byte{[]byte("hunter22")},
		}

		var output bytes.Buffer
		password, err := PromptPassword(reader, &output, "Enter master password: ", "")
		require.NoError(t, err)
		require.Equal(t, []byte("hunter22"), password)
		require.Equal(t, "Enter master password: ", output.String())
	})

	t.Run("prompts twice and accepts matching passwords", func(t *testing.T) {
		t.Parallel()

		reader := &stubPasswordReader{
			isTerminal: true,
			passwords:  [][]byte{[]byte("hunter22"), []byte("hunter22")},
		}

		var output bytes.Buffer
		password, err := PromptPassword(reader, &output, "Enter master password: ", "Confirm master password: ")
		require.NoError(t, err)
		require.Equal(t, []byte("hunter22"), password)
		require.Equal(t, "Enter master password: Confirm master password: ", output.String())
	})

	t.Run("returns error when passwords do not match", func(t *testing.T) {
		t.Parallel()

		reader := &stubPasswordReader{
			isTerminal: true,
			passwords:  [][]byte{[]byte("hunter22"), []byte("hunter23")},
		}

		var output bytes.Buffer
		_, err := PromptPassword(reader, &output, "Enter master password: ", "Confirm master password: ")
		require.EqualError(t, err, "passwords do not match")
	})

	t.Run("returns error when password is empty", func(t *testing.T) {
		t.Parallel()

		reader := &stubPasswordReader{
			isTerminal: true,
			passwords:  [][]byte{{}},
		}

		var output bytes.Buffer
		_, err := PromptPassword(reader, &output, "Enter master password: ", "")
		require.EqualError(t, err, "password cannot be empty")
	})

	t.Run("returns error when input is not a terminal", func(t *testing.T) {
		t.Parallel()

		reader := &stubPasswordReader{isTerminal: false}

		var output bytes.Buffer
		_, err := PromptPassword(reader, &output, "Enter master password: ", "")
		require.EqualError(t, err, "password input requires a terminal (input is not a TTY)")
	})

	t.Run("returns error when output writer is nil", func(t *testing.T) {
		t.Parallel()

		reader := &stubPasswordReader{isTerminal: true}

		_, err := PromptPassword(reader, nil, "Enter master password: ", "")
		require.EqualError(t, err, "output writer cannot be nil")
	})

	t.Run("propagates read errors", func(t *testing.T) {
		t.Parallel()

		reader := &stubPasswordReader{
			isTerminal: true,
			err:        errors.New("tty closed"),
		}

		var output bytes.Buffer
		_, err := PromptPassword(reader, &output, "Enter master password: ", "")
		require.ErrorContains(t, err, "tty closed")
	})
}

func TestReadLine(t *testing.T) {
	t.Parallel()

	t.Run("returns the trimmed line", func(t *testing.T) {
		t.Parallel()

		var output bytes.Buffer
		line, err := ReadLine(strings.NewReader("  example.com  \n"), &output, "Enter service name: ")
		require.NoError(t, err)
		require.Equal(t, "example.com", line)
		require.Equal(t, "Enter service name: ", output.String())
	})

	t.Run("accepts input without a trailing newline", func(t *testing.T) {
		t.Parallel()

		var output bytes.Buffer
		line, err := ReadLine(strings.NewReader("example.com"), &output, "Enter service name: ")
		require.NoError(t, err)
		require.Equal(t, "example.com", line)
	})

	t.Run("returns empty string for empty input", func(t *testing.T) {
		t.Parallel()

		var output bytes.Buffer
		line, err := ReadLine(strings.NewReader(""), &output, "Enter service name: ")
		require.NoError(t, err)
		require.Empty(t, line)
	})
}

func TestZeroPassword(t *testing.T) {
	t.Parallel()

	password := []byte("hunter22")
	ZeroPassword(password)
	require.Equal(t, make([]byte, 8), password)
}

// Package passgen generates random passwords for the CLI. It draws from
// crypto/rand; generated passwords never touch the vault's cryptographic
// state.
package passgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	MinLength     = 4
	DefaultLength = 16

	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
	symbols   = "!@#$%^&*()-_=+[]{}|;:,.<>?"
)

// Generate returns a random password of the given length containing at least
// one lowercase letter, one uppercase letter and one digit, plus one symbol
// when includeSymbols is set.
func Generate(length int, includeSymbols bool) (string, error) {
	if length < MinLength {
		return "", fmt.Errorf("password length must be at least %d characters, got %d", MinLength, length)
	}

	charset := lowercase + uppercase + digits
	if includeSymbols {
		charset += symbols
	}

	password := make([]byte, 0, length)

	for _, class := range []string{lowercase, uppercase, digits} {
		c, err := randByte(class)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	if includeSymbols {
		c, err := randByte(symbols)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	for len(password) < length {
		c, err := randByte(charset)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	// Fisher-Yates so the guaranteed class characters are not predictable
	// prefix positions.
	for i := len(password) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		password[i], password[j] = password[j], password[i]
	}

	return string(password), nil
}

func randByte(charset string) (byte, error) {
	i, err := randInt(len(charset))
	if err != nil {
		return 0, err
	}

	return charset[i], nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random index: %w", err)
	}

	return int(v.Int64()), nil
}

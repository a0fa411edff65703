package krypto

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/argon2"
)

const (
	// MasterKeySize is the size of the symmetric key protecting the entry set.
	MasterKeySize uint32 = 32
	// MasterSaltSize is the size of the key-derivation salt stored in the vault header.
	MasterSaltSize = 32

	MinPasswordLength                   = 1
	MaxPasswordLength                   = 256
	MinSaltLength                       = 16
	MaxSaltLength                       = 255
	DefaultArgon2idMemoryKiB     uint32 = 64 * 1024
	MaxArgon2idMemoryKiB         uint32 = 8 * 1024 * 1024
	DefaultArgon2idNumIterations uint32 = 3
	MaxArgon2idNumIterations     uint32 = 100
	DefaultArgon2idNumThreads    uint8  = 4
	MaxArgon2idNumThreads        uint8  = 32
)

var ErrInvalidUTF8 = errors.New("password contains invalid UTF-8 characters")

// Argon2idParams holds the cost parameters for Argon2id key derivation.
type Argon2idParams struct {
	MemoryKiB     uint32
	NumIterations uint32
	NumThreads    uint8
}

func (a Argon2idParams) Validate(ctx context.Context) error {
	return validation.ValidateStructWithContext(ctx, &a,
		validation.Field(&a.MemoryKiB, validation.Required, validation.Min(uint32(1)), validation.Max(MaxArgon2idMemoryKiB)),
		validation.Field(&a.NumIterations, validation.Required, validation.Min(uint32(1)), validation.Max(MaxArgon2idNumIterations)),
		validation.Field(&a.NumThreads, validation.Required, validation.Min(uint8(1)), validation.Max(MaxArgon2idNumThreads)),
	)
}

func DefaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		MemoryKiB:     DefaultArgon2idMemoryKiB,
		NumIterations: DefaultArgon2idNumIterations,
		NumThreads:    DefaultArgon2idNumThreads,
	}
}

// GenerateSalt returns length cryptographically random bytes.
func GenerateSalt(length uint32) ([]byte, error) {
	if length < MinSaltLength {
		return nil, fmt.Errorf("salt size must be at least %d bytes, got %d", MinSaltLength, length)
	}

	if length > MaxSaltLength {
		return nil, fmt.Errorf("salt size exceeds maximum of %d bytes, got %d", MaxSaltLength, length)
	}

	salt := make([]byte, length)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("random salt: %w", err)
	}

	return salt, nil
}

// DeriveKeyFromPassword derives a symmetric key from a password and salt using
// Argon2id. The derivation is deterministic: the same (password, salt, params)
// always yields the same key bytes.
func DeriveKeyFromPassword(ctx context.Context, utf8Password []byte, salt []byte, params Argon2idParams, keyLengthInBytes uint32) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := validatePassword(utf8Password); err != nil {
		return nil, err
	}

	if salt == nil {
		return nil, errors.New("salt cannot be nil")
	}

	if len(salt) < MinSaltLength {
		return nil, fmt.Errorf("salt size must be at least %d bytes, got %d", MinSaltLength, len(salt))
	}

	if len(salt) > MaxSaltLength {
		return nil, fmt.Errorf("salt size exceeds maximum of %d bytes, got %d", MaxSaltLength, len(salt))
	}

	if keyLengthInBytes != MasterKeySize {
		return nil, fmt.Errorf("key length must be %d bytes, got %d", MasterKeySize, keyLengthInBytes)
	}

	if err := params.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid Argon2id parameters: %w", err)
	}

	return argon2.IDKey(utf8Password, salt, params.NumIterations, params.MemoryKiB, params.NumThreads, keyLengthInBytes), nil
}

func validatePassword(utf8Password []byte) error {
	if utf8Password == nil {
		return errors.New("password cannot be nil")
	}

	if len(utf8Password) < MinPasswordLength {
		return fmt.Errorf("password length must be at least %d characters, got %d", MinPasswordLength, len(utf8Password))
	}

	if len(utf8Password) > MaxPasswordLength {
		return fmt.Errorf("password exceeds maximum length of %d characters, got %d", MaxPasswordLength, len(utf8Password))
	}

	if !utf8.Valid(utf8Password) {
		return ErrInvalidUTF8
	}

	return nil
}

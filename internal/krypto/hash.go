package krypto

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	hashSaltSize   = 16
	hashDigestSize = 32
)

var (
	ErrMalformedHash          = errors.New("malformed password hash")
	ErrIncompatibleHashVersion = errors.New("incompatible argon2 version in password hash")
)

// HashMasterPassword hashes the master password for later authentication and
// generates a fresh salt for symmetric-key derivation.
//
// The returned hash is a self-describing PHC string of the form
// $argon2id$v=19$m=...,t=...,p=...$salt$digest. Its embedded salt is generated
// independently of the returned key-derivation salt, so neither value stored
// in the clear is sufficient to authenticate, and the authentication digest is
// never the encryption key.
func HashMasterPassword(ctx context.Context, utf8Password []byte, params Argon2idParams) (string, []byte, error) {
	select {
	case <-ctx.Done():
		return "", nil, ctx.Err()
	default:
	}

	if err := validatePassword(utf8Password); err != nil {
		return "", nil, err
	}

	if err := params.Validate(ctx); err != nil {
		return "", nil, fmt.Errorf("invalid Argon2id parameters: %w", err)
	}

	hashSalt, err := GenerateSalt(hashSaltSize)
	if err != nil {
		return "", nil, fmt.Errorf("generate hash salt: %w", err)
	}

	keySalt, err := GenerateSalt(MasterSaltSize)
	if err != nil {
		return "", nil, fmt.Errorf("generate key salt: %w", err)
	}

	digest := argon2.IDKey(utf8Password, hashSalt, params.NumIterations, params.MemoryKiB, params.NumThreads, hashDigestSize)

	b64 := base64.RawStdEncoding
	hash := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, params.MemoryKiB, params.NumIterations, params.NumThreads,
		b64.EncodeToString(hashSalt), b64.EncodeToString(digest))

	return hash, keySalt, nil
}

// VerifyMasterPassword recomputes the hash with the parameters embedded in the
// PHC string and compares it in constant time. A wrong password yields
// (false, nil); an error is returned only for malformed hash input.
func VerifyMasterPassword(ctx context.Context, utf8Password []byte, phcHash string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	if err := validatePassword(utf8Password); err != nil {
		return false, err
	}

	params, salt, digest, err := parsePHCHash(phcHash)
	if err != nil {
		return false, err
	}

	if err := params.Validate(ctx); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	computed := argon2.IDKey(utf8Password, salt, params.NumIterations, params.MemoryKiB, params.NumThreads, uint32(len(digest)))

	return subtle.ConstantTimeCompare(computed, digest) == 1, nil
}

// HashParams extracts the Argon2id cost parameters embedded in a PHC hash
// string. The hash is the only place the vault records them, so key
// derivation after authentication reads them from here.
func HashParams(phcHash string) (Argon2idParams, error) {
	params, _, _, err := parsePHCHash(phcHash)
	return params, err
}

func parsePHCHash(phcHash string) (Argon2idParams, []byte, []byte, error) {
	var params Argon2idParams

	fields := strings.Split(phcHash, "$")
	if len(fields) != 6 || fields[0] != "" {
		return params, nil, nil, fmt.Errorf("%w: expected 6 $-separated fields, got %d", ErrMalformedHash, len(fields))
	}

	if fields[1] != "argon2id" {
		return params, nil, nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, fields[1])
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return params, nil, nil, fmt.Errorf("%w: version field %q", ErrMalformedHash, fields[2])
	}
	if version != argon2.Version {
		return params, nil, nil, fmt.Errorf("%w: got v=%d, want v=%d", ErrIncompatibleHashVersion, version, argon2.Version)
	}

	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &params.MemoryKiB, &params.NumIterations, &params.NumThreads); err != nil {
		return params, nil, nil, fmt.Errorf("%w: parameter field %q", ErrMalformedHash, fields[3])
	}

	b64 := base64.RawStdEncoding

	salt, err := b64.DecodeString(fields[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	if len(salt) < MinSaltLength {
		return params, nil, nil, fmt.Errorf("%w: salt must be at least %d bytes, got %d", ErrMalformedHash, MinSaltLength, len(salt))
	}

	digest, err := b64.DecodeString(fields[5])
	if err != nil {
		return params, nil, nil, fmt.Errorf("%w: digest: %v", ErrMalformedHash, err)
	}
	if len(digest) == 0 {
		return params, nil, nil, fmt.Errorf("%w: empty digest", ErrMalformedHash)
	}

	return params, salt, digest, nil
}

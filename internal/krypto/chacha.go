package krypto

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// NonceSize is the size of the random nonce prefixed to every sealed blob.
	NonceSize = chacha20poly1305.NonceSize
)

// ErrDecryptionFailed is returned for any blob that fails to authenticate.
// A wrong key and a tampered blob are deliberately indistinguishable.
var ErrDecryptionFailed = errors.New("decryption failed")

// Cipher authenticated-encrypts byte payloads with ChaCha20-Poly1305 under a
// fixed key, framing each sealed blob as nonce || ciphertext+tag.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher creates a ChaCha20-Poly1305 cipher with the given 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if key == nil {
		return nil, errors.New("key cannot be nil")
	}

	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key size must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("create chacha20poly1305 cipher: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Seal encrypts plainText under a fresh random nonce and returns
// nonce || ciphertext+tag. Every call draws an independent nonce from the
// CSPRNG; a repeated nonce under the same key would break the cipher.
func (c *Cipher) Seal(plainText []byte) ([]byte, error) {
	if plainText == nil {
		return nil, errors.New("plaintext cannot be nil")
	}

	blob := make([]byte, NonceSize, NonceSize+len(plainText)+c.aead.Overhead())
	if _, err := rand.Read(blob[:NonceSize]); err != nil {
		return nil, fmt.Errorf("random nonce: %w", err)
	}

	return c.aead.Seal(blob, blob[:NonceSize], plainText, nil), nil
}

// Open splits a sealed blob into nonce and ciphertext and authenticated-
// decrypts it. Blobs shorter than the nonce fail with a length error; an
// authentication failure surfaces as ErrDecryptionFailed.
func (c *Cipher) Open(blob []byte) ([]byte, error) {
	if len(blob) < NonceSize {
		return nil, fmt.Errorf("encrypted blob must be at least %d bytes, got %d", NonceSize, len(blob))
	}

	plainText, err := c.aead.Open(nil, blob[:NonceSize], blob[NonceSize:], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plainText, nil
}

package vault

import (
	"encoding/binary"
	"fmt"

	"github.com/PRATIKK0709/PassRusted/internal/krypto"
)

type Version uint32

func (v Version) String() string {
	return fmt.Sprintf("v%d", uint32(v))
}

const (
	VersionUnknown Version = 0
	VersionV1      Version = 1

	versionLen       = 4
	masterHashLenLen = 2
	saltLen          = krypto.MasterSaltSize
	minHeaderLen     = versionLen + masterHashLenLen + saltLen

	// MaxMasterHashLen bounds the PHC string so a corrupt length prefix cannot
	// trigger an oversized allocation.
	MaxMasterHashLen = 1024
)

// Header is the unencrypted metadata block at the start of the vault file. It
// is readable without the master key: the PHC master hash authenticates the
// password, the salt feeds symmetric-key derivation. The two use independent
// salts, so the stored salt alone cannot authenticate.
type Header struct {
	Version    Version
	MasterHash string
	Salt       [saltLen]byte
}

// Validate checks if the Header fields are valid. A version other than the
// current one is rejected outright rather than interpreted.
func (h *Header) Validate() error {
	if h.Version != VersionV1 {
		return fmt.Errorf("version: expected %s, got %s", VersionV1, h.Version)
	}

	if h.MasterHash == "" {
		return fmt.Errorf("master hash cannot be empty")
	}

	if len(h.MasterHash) > MaxMasterHashLen {
		return fmt.Errorf("master hash exceeds maximum of %d bytes, got %d", MaxMasterHashLen, len(h.MasterHash))
	}

	return nil
}

// MarshalBinary implements [encoding.BinaryMarshaler].
func (h *Header) MarshalBinary() ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("invalid: %w", err)
	}

	buf := make([]byte, minHeaderLen+len(h.MasterHash))
	offset := 0

	binary.LittleEndian.PutUint32(buf[offset:offset+versionLen], uint32(h.Version))
	offset += versionLen

	binary.LittleEndian.PutUint16(buf[offset:offset+masterHashLenLen], uint16(len(h.MasterHash)))
	offset += masterHashLenLen

	copy(buf[offset:offset+len(h.MasterHash)], h.MasterHash)
	offset += len(h.MasterHash)

	copy(buf[offset:offset+saltLen], h.Salt[:])

	return buf, nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler].
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < minHeaderLen {
		return fmt.Errorf("invalid length: got %d, expected at least %d", len(data), minHeaderLen)
	}

	offset := 0

	h.Version = Version(binary.LittleEndian.Uint32(data[offset : offset+versionLen]))
	offset += versionLen

	hashLen := int(binary.LittleEndian.Uint16(data[offset : offset+masterHashLenLen]))
	offset += masterHashLenLen

	if len(data) != minHeaderLen+hashLen {
		return fmt.Errorf("invalid length: got %d, expected %d", len(data), minHeaderLen+hashLen)
	}

	h.MasterHash = string(data[offset : offset+hashLen])
	offset += hashLen

	copy(h.Salt[:], data[offset:offset+saltLen])

	if err := h.Validate(); err != nil {
		return fmt.Errorf("invalid: %w", err)
	}

	return nil
}

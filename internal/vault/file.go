package vault

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"

	"github.com/PRATIKK0709/PassRusted/internal/krypto"
)

// On-disk layout, single file per vault:
//
//	[4 bytes LE: header length]
//	[header: version | master hash | key-derivation salt]
//	[remaining bytes: nonce(12) || ciphertext+tag]
//
// The header is readable without the master key; the entry set is one opaque
// encrypted blob rewritten in full on every mutation.

const (
	headerLenPrefixSize = 4
	vaultFilePerm       = 0o600
)

var ErrFileTruncated = errors.New("vault file truncated")

// ReadHeader reads the length-prefixed header from the vault file. No key is
// required; callers use it to test for initialization and to obtain the
// master hash and salt for authentication.
func ReadHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vault file: %w", err)
	}
	defer f.Close()

	header, err := readHeader(f)
	if err != nil {
		return nil, err
	}

	return header, nil
}

// ReadEntries re-reads the vault file, skips the header, and decrypts the
// remainder into the entries map. An empty remainder (a freshly initialized
// vault) yields an empty map.
func ReadEntries(path string, cipher *krypto.Cipher) (map[string]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vault file: %w", err)
	}
	defer f.Close()

	if _, err := readHeader(f); err != nil {
		return nil, err
	}

	blob, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read encrypted blob: %w", err)
	}

	entries := make(map[string]Entry)
	if len(blob) == 0 {
		return entries, nil
	}

	plainText, err := cipher.Open(blob)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(plainText)

	if err := json.Unmarshal(plainText, &entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}

	return entries, nil
}

// WriteAll serializes the header and the entire entries map, encrypts the
// entries as one blob, and atomically replaces the vault file. The rewrite
// goes to a temporary file in the same directory, is flushed, and is renamed
// over the target so an interruption never leaves a truncated vault.
//
// No file locking is performed: two processes writing the same path can still
// race each other, an accepted limitation of the single-user design.
func WriteAll(path string, header *Header, entries map[string]Entry, cipher *krypto.Cipher) error {
	headerBytes, err := header.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}

	plainText, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	defer memguard.WipeBytes(plainText)

	blob, err := cipher.Seal(plainText)
	if err != nil {
		return fmt.Errorf("encrypt entries: %w", err)
	}

	var prefix [headerLenPrefixSize]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(headerBytes)))

	return atomicWriteFile(path, [][]byte{prefix[:], headerBytes, blob})
}

func readHeader(r io.Reader) (*Header, error) {
	var prefix [headerLenPrefixSize]byte
	if n, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: expected %d header length bytes, read %d", ErrFileTruncated, headerLenPrefixSize, n)
		}

		return nil, fmt.Errorf("read header length: %w", err)
	}

	headerLen := binary.LittleEndian.Uint32(prefix[:])
	if headerLen < minHeaderLen || headerLen > minHeaderLen+MaxMasterHashLen {
		return nil, fmt.Errorf("invalid header length %d", headerLen)
	}

	headerBytes := make([]byte, headerLen)
	if n, err := io.ReadFull(r, headerBytes); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: expected %d header bytes, read %d", ErrFileTruncated, headerLen, n)
		}

		return nil, fmt.Errorf("read header: %w", err)
	}

	var header Header
	if err := header.UnmarshalBinary(headerBytes); err != nil {
		return nil, fmt.Errorf("unmarshal header: %w", err)
	}

	return &header, nil
}

func atomicWriteFile(path string, chunks [][]byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".passrusted-*")
	if err != nil {
		return fmt.Errorf("create temp vault file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := tmp.Chmod(vaultFilePerm); err != nil {
		return fmt.Errorf("chmod temp vault file: %w", err)
	}

	for _, chunk := range chunks {
		if _, err := tmp.Write(chunk); err != nil {
			return fmt.Errorf("write vault file: %w", err)
		}
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync vault file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close vault file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace vault file: %w", err)
	}

	return syncDir(dir)
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open vault directory: %w", err)
	}
	defer f.Close()

	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync vault directory: %w", err)
	}

	return nil
}

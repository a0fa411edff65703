package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/awnumar/memguard"

	"github.com/PRATIKK0709/PassRusted/internal/krypto"
)

// MinMasterPasswordLength is enforced at initialization only; existing vaults
// always accept the password they were created with.
const MinMasterPasswordLength = 8

var (
	ErrNotInitialized     = errors.New("vault not initialized")
	ErrAlreadyInitialized = errors.New("vault already initialized")
	ErrLocked             = errors.New("vault is locked")
	ErrPasswordTooShort   = fmt.Errorf("master password must be at least %d characters long", MinMasterPasswordLength)
	ErrNoEntry            = errors.New("no entry found")
)

// Store holds the credential entries for one vault file.
//
// It moves through three states: uninitialized (no vault file), locked (header
// read, no key), and unlocked (key derived, entries resident in memory). The
// entries map stays empty until an unlock succeeds, and every mutation
// re-encrypts and rewrites the whole file.
type Store struct {
	path      string
	logger    *slog.Logger
	kdfParams krypto.Argon2idParams
	header    *Header
	key       *memguard.Enclave
	entries   map[string]Entry
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithKDFParams(params krypto.Argon2idParams) Option {
	return func(s *Store) {
		s.kdfParams = params
	}
}

// Open prepares a store for the vault at path, reading the header when the
// file already exists. No key material is derived until Initialize or Unlock.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:      path,
		kdfParams: krypto.DefaultArgon2idParams(),
		entries:   make(map[string]Entry),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if _, err := os.Stat(path); err == nil {
		header, err := ReadHeader(path)
		if err != nil {
			return nil, err
		}

		s.header = header
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat vault file: %w", err)
	}

	return s, nil
}

func (s *Store) IsInitialized() bool {
	return s.header != nil
}

func (s *Store) IsUnlocked() bool {
	return s.header != nil && s.key != nil
}

// Initialize creates a new vault protected by password: it hashes the
// password for authentication, derives the symmetric key, and persists the
// header together with an encrypted empty entry set. The store is left
// unlocked with zero entries.
func (s *Store) Initialize(ctx context.Context, password []byte) error {
	if s.IsInitialized() {
		return ErrAlreadyInitialized
	}

	if len(password) < MinMasterPasswordLength {
		return ErrPasswordTooShort
	}

	s.logger.Debug("initializing vault", slog.String("path", s.path))

	hash, salt, err := krypto.HashMasterPassword(ctx, password, s.kdfParams)
	if err != nil {
		return fmt.Errorf("hash master password: %w", err)
	}

	header := &Header{Version: VersionV1, MasterHash: hash}
	copy(header.Salt[:], salt)

	key, err := s.deriveKey(ctx, password, header)
	if err != nil {
		return err
	}

	entries := make(map[string]Entry)

	cipher, err := newCipher(key)
	if err != nil {
		return err
	}

	if err := WriteAll(s.path, header, entries, cipher); err != nil {
		key.Destroy()
		return err
	}

	s.header = header
	s.key = key.Seal()
	s.entries = entries

	s.logger.Debug("vault initialized", slog.String("version", header.Version.String()))

	return nil
}

// Unlock verifies password against the stored master hash and, on success,
// derives the symmetric key. A wrong password yields (false, nil) so callers
// can re-prompt; the entries are not loaded (see LoadEntries).
func (s *Store) Unlock(ctx context.Context, password []byte) (bool, error) {
	if !s.IsInitialized() {
		return false, ErrNotInitialized
	}

	ok, err := krypto.VerifyMasterPassword(ctx, password, s.header.MasterHash)
	if err != nil {
		return false, fmt.Errorf("verify master password: %w", err)
	}

	if !ok {
		return false, nil
	}

	key, err := s.deriveKey(ctx, password, s.header)
	if err != nil {
		return false, err
	}

	s.key = key.Seal()

	return true, nil
}

// LoadEntries decrypts the entry set from disk into memory. The store must be
// unlocked.
func (s *Store) LoadEntries() error {
	if !s.IsUnlocked() {
		return ErrLocked
	}

	cipher, err := s.cipher()
	if err != nil {
		return err
	}

	entries, err := ReadEntries(s.path, cipher)
	if err != nil {
		return err
	}

	s.entries = entries

	s.logger.Debug("entries loaded", slog.Int("count", len(entries)))

	return nil
}

// Authenticate composes Unlock and LoadEntries. On a wrong password it
// returns (false, nil) and leaves the entries unloaded.
func (s *Store) Authenticate(ctx context.Context, password []byte) (bool, error) {
	ok, err := s.Unlock(ctx, password)
	if err != nil || !ok {
		return ok, err
	}

	if err := s.LoadEntries(); err != nil {
		return false, err
	}

	return true, nil
}

// Lock destroys the derived key and drops the in-memory entries.
func (s *Store) Lock() {
	s.key = nil
	s.entries = make(map[string]Entry)
}

// Add inserts a credential entry for service and persists the vault. Adding a
// service that already exists overwrites the previous entry (upsert).
func (s *Store) Add(service, username, password string) (Entry, error) {
	if !s.IsUnlocked() {
		return Entry{}, ErrLocked
	}

	entry := newEntry(service, username, password)
	s.entries[service] = entry

	if err := s.persist(); err != nil {
		return Entry{}, err
	}

	return entry, nil
}

// Get returns the entry for service, or ErrNoEntry. Pure lookup, no persist.
func (s *Store) Get(service string) (Entry, error) {
	if !s.IsUnlocked() {
		return Entry{}, ErrLocked
	}

	entry, ok := s.entries[service]
	if !ok {
		return Entry{}, fmt.Errorf("%w for service: %s", ErrNoEntry, service)
	}

	return entry, nil
}

// List returns all entries in unspecified order.
func (s *Store) List() ([]Entry, error) {
	if !s.IsUnlocked() {
		return nil, ErrLocked
	}

	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}

	return entries, nil
}

// Delete removes the entry for service. Deleting an absent service is not an
// error and does not rewrite the file.
func (s *Store) Delete(service string) error {
	if !s.IsUnlocked() {
		return ErrLocked
	}

	if _, ok := s.entries[service]; !ok {
		return nil
	}

	delete(s.entries, service)

	return s.persist()
}

// UpdatePassword replaces the password of an existing entry, advancing its
// UpdatedAt and leaving CreatedAt and ID untouched. Absent services are a
// silent no-op.
func (s *Store) UpdatePassword(service, newPassword string) error {
	if !s.IsUnlocked() {
		return ErrLocked
	}

	entry, ok := s.entries[service]
	if !ok {
		return nil
	}

	entry.updatePassword(newPassword)
	s.entries[service] = entry

	return s.persist()
}

func (s *Store) persist() error {
	cipher, err := s.cipher()
	if err != nil {
		return err
	}

	s.logger.Debug("persisting vault", slog.Int("entries", len(s.entries)))

	return WriteAll(s.path, s.header, s.entries, cipher)
}

// deriveKey derives the master key with the cost parameters recorded in the
// header's PHC hash, so the derivation matches across processes regardless of
// this store's configured parameters.
func (s *Store) deriveKey(ctx context.Context, password []byte, header *Header) (*memguard.LockedBuffer, error) {
	params, err := krypto.HashParams(header.MasterHash)
	if err != nil {
		return nil, fmt.Errorf("read KDF parameters: %w", err)
	}

	s.logger.Debug("deriving master key", slog.Group("argon2id",
		slog.Int("memory_kib", int(params.MemoryKiB)),
		slog.Int("num_iterations", int(params.NumIterations)),
		slog.Int("num_threads", int(params.NumThreads)),
	))

	key, err := krypto.DeriveKeyFromPassword(ctx, password, header.Salt[:], params, krypto.MasterKeySize)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}

	// NewBufferFromBytes wipes the unprotected key bytes.
	return memguard.NewBufferFromBytes(key), nil
}

func (s *Store) cipher() (*krypto.Cipher, error) {
	keyBuf, err := s.key.Open()
	if err != nil {
		return nil, fmt.Errorf("open master key: %w", err)
	}
	defer keyBuf.Destroy()

	// The cipher copies the key into its own state, so the buffer is
	// destroyed as soon as construction finishes.
	return krypto.NewCipher(keyBuf.Bytes())
}

func newCipher(key *memguard.LockedBuffer) (*krypto.Cipher, error) {
	return krypto.NewCipher(key.Bytes())
}

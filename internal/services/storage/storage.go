// Package storage gives the ledger file access to its data directory with
// optional age encryption at rest.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"filippo.io/age"
)

const (
	// ageHeader is the prefix of age-encrypted files
	ageHeader = "age-encryption.org"

	// markerFile indicates encryption is enabled
	markerFile = ".encrypted"

	// verifyFile holds verifyMagic encrypted with the current password
	verifyFile = ".encryption-verify"

	verifyMagic = `{"magic":"budgetlens-encryption-verify","version":1}`

	// MinPasswordLength is the shortest password EnableEncryption accepts
	MinPasswordLength = 8
)

var (
	// ErrLocked is returned when encrypted data is accessed before Unlock
	ErrLocked = errors.New("storage is locked")

	// ErrWrongPassword is returned when a password fails verification
	ErrWrongPassword = errors.New("incorrect password")

	ErrAlreadyEncrypted = errors.New("encryption is already enabled")
	ErrNotEncrypted     = errors.New("encryption is not enabled")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// Storage provides transparent encrypted/unencrypted file access below a
// base directory.
type Storage struct {
	baseDir    string
	encrypted  bool
	workFactor int
	identity   *age.ScryptIdentity
	recipient  *age.ScryptRecipient
	mu         sync.RWMutex
}

// New opens the data directory, creating it when missing
func New(baseDir string) (*Storage, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{baseDir: baseDir}
	if _, err := os.Stat(filepath.Join(baseDir, markerFile)); err == nil {
		s.encrypted = true
	}
	return s, nil
}

// SetWorkFactor overrides the scrypt work factor (log2 N) used for new
// encryption keys. Zero keeps age's default.
func (s *Storage) SetWorkFactor(logN int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workFactor = logN
}

// BaseDir returns the base directory
func (s *Storage) BaseDir() string {
	return s.baseDir
}

// Path joins name onto the base directory
func (s *Storage) Path(name string) string {
	return filepath.Join(s.baseDir, name)
}

// IsEncrypted returns true if the data directory is encrypted
func (s *Storage) IsEncrypted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encrypted
}

// IsUnlocked reports whether files can be read and written
func (s *Storage) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.encrypted || s.identity != nil
}

// Unlock verifies password and keeps the derived keys in memory
func (s *Storage) Unlock(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return nil
	}

	identity, err := s.verify(password)
	if err != nil {
		return err
	}

	recipient, err := s.newRecipient(password)
	if err != nil {
		return err
	}
	s.identity = identity
	s.recipient = recipient
	return nil
}

// Lock clears the encryption keys from memory
func (s *Storage) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	s.recipient = nil
}

// ReadFile reads name below the base directory, decrypting if needed
func (s *Storage) ReadFile(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, err
	}

	if isAgeEncrypted(data) {
		if s.identity == nil {
			return nil, ErrLocked
		}
		return unseal(data, s.identity)
	}
	return data, nil
}

// WriteFile atomically writes name below the base directory. When
// encryption is enabled the data is encrypted, and writing while locked
// fails with ErrLocked rather than leaking plaintext.
func (s *Storage) WriteFile(name string, data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.encrypted && !skipEncryption(name) {
		if s.recipient == nil {
			return ErrLocked
		}
		encrypted, err := seal(data, s.recipient)
		if err != nil {
			return fmt.Errorf("failed to encrypt: %w", err)
		}
		data = encrypted
	}

	return atomicWrite(s.Path(name), data)
}

// Exists reports whether name exists below the base directory
func (s *Storage) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Remove deletes name below the base directory
func (s *Storage) Remove(name string) error {
	return os.Remove(s.Path(name))
}

// DataFiles lists the data files (JSON and CSV) below the base directory,
// relative to it. Marker files are excluded.
func (s *Storage) DataFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		if isDataFile(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan data directory: %w", err)
	}
	return files, nil
}

// verify checks password against the verification file. Caller holds mu.
func (s *Storage) verify(password string) (*age.ScryptIdentity, error) {
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	encrypted, err := os.ReadFile(s.Path(verifyFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read verification file: %w", err)
	}

	decrypted, err := unseal(encrypted, identity)
	if err != nil || string(decrypted) != verifyMagic {
		return nil, ErrWrongPassword
	}
	return identity, nil
}

func (s *Storage) newRecipient(password string) (*age.ScryptRecipient, error) {
	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipient: %w", err)
	}
	if s.workFactor > 0 {
		recipient.SetWorkFactor(s.workFactor)
	}
	return recipient, nil
}

// atomicWrite writes through a temp file in the target directory and
// renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func skipEncryption(name string) bool {
	base := filepath.Base(name)
	return base == markerFile || base == verifyFile
}

func isDataFile(name string) bool {
	if skipEncryption(name) {
		return false
	}
	switch filepath.Ext(name) {
	case ".json", ".csv":
		return true
	}
	return false
}

// isAgeEncrypted checks if data starts with the age header
func isAgeEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(ageHeader)) && len(data) > len(ageHeader)
}

// seal encrypts a whole file body to to.
func seal(plain []byte, to age.Recipient) ([]byte, error) {
	var out bytes.Buffer
	w, err := age.Encrypt(&out, to)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(plain); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// unseal is the inverse of seal. A wrong password fails here with an
// age.NoIdentityMatchError.
func unseal(sealed []byte, with age.Identity) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(sealed), with)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

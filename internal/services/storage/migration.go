package storage

import (
	"fmt"
	"os"

	"filippo.io/age"
)

// EnableEncryption encrypts every data file with password and leaves the
// storage unlocked.
func (s *Storage) EnableEncryption(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encrypted {
		return ErrAlreadyEncrypted
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	recipient, err := s.newRecipient(password)
	if err != nil {
		return err
	}
	identity, err := s.identityFor(password)
	if err != nil {
		return err
	}

	verifyPath := s.Path(verifyFile)
	sealed, err := seal([]byte(verifyMagic), recipient)
	if err != nil {
		return fmt.Errorf("failed to encrypt verification file: %w", err)
	}
	if err := atomicWrite(verifyPath, sealed); err != nil {
		return fmt.Errorf("failed to write verification file: %w", err)
	}

	files, err := s.DataFiles()
	if err != nil {
		os.Remove(verifyPath)
		return err
	}

	var done []string
	for _, name := range files {
		err := convertFile(s.Path(name), func(data []byte) ([]byte, error) {
			if isAgeEncrypted(data) {
				return nil, nil
			}
			return seal(data, recipient)
		})
		if err != nil {
			// Best effort: put back what was already converted.
			for _, prev := range done {
				convertFile(s.Path(prev), func(data []byte) ([]byte, error) {
					return unseal(data, identity)
				})
			}
			os.Remove(verifyPath)
			return fmt.Errorf("failed to encrypt %s: %w", name, err)
		}
		done = append(done, name)
	}

	if err := atomicWrite(s.Path(markerFile), []byte("encrypted")); err != nil {
		return fmt.Errorf("failed to create marker file: %w", err)
	}

	s.encrypted = true
	s.identity = identity
	s.recipient = recipient
	return nil
}

// DisableEncryption decrypts every data file in place. The current password
// is required even when unlocked.
func (s *Storage) DisableEncryption(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return ErrNotEncrypted
	}

	identity, err := s.verify(password)
	if err != nil {
		return err
	}

	files, err := s.DataFiles()
	if err != nil {
		return err
	}
	for _, name := range files {
		err := convertFile(s.Path(name), func(data []byte) ([]byte, error) {
			if !isAgeEncrypted(data) {
				return nil, nil
			}
			return unseal(data, identity)
		})
		if err != nil {
			return fmt.Errorf("failed to decrypt %s: %w", name, err)
		}
	}

	os.Remove(s.Path(markerFile))
	os.Remove(s.Path(verifyFile))

	s.encrypted = false
	s.identity = nil
	s.recipient = nil
	return nil
}

func (s *Storage) identityFor(password string) (*age.ScryptIdentity, error) {
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}
	return identity, nil
}

// convertFile rewrites path with fn(contents). A nil result leaves the file
// untouched.
func convertFile(path string, fn func([]byte) ([]byte, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := fn(data)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return atomicWrite(path, out)
}

package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"filippo.io/age"
)

// EnableEncryption encrypts every stored blob with password and keeps the
// store unlocked
func (s *FileStore) EnableEncryption(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encrypted {
		return fmt.Errorf("encryption is already enabled")
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	identity, recipient, err := keysFor(password)
	if err != nil {
		return err
	}

	// Verification file first so a half-finished run can still be unlocked
	verifyPath := filepath.Join(s.baseDir, verifyFile)
	sealed, err := encryptData([]byte(verifyMagic), recipient)
	if err != nil {
		return fmt.Errorf("failed to encrypt verification file: %w", err)
	}
	if err := atomicWrite(verifyPath, sealed); err != nil {
		return fmt.Errorf("failed to write verification file: %w", err)
	}

	files, err := s.blobFiles()
	if err != nil {
		os.Remove(verifyPath)
		return err
	}

	for i, path := range files {
		if err := transformFile(path, func(data []byte) ([]byte, bool, error) {
			if isAgeEncrypted(data) {
				return nil, false, nil
			}
			out, err := encryptData(data, recipient)
			return out, true, err
		}); err != nil {
			s.rollback(files[:i], identity)
			os.Remove(verifyPath)
			return fmt.Errorf("failed to encrypt %s: %w", filepath.Base(path), err)
		}
	}

	if err := atomicWrite(filepath.Join(s.baseDir, markerFile), []byte("encrypted")); err != nil {
		return fmt.Errorf("failed to create marker file: %w", err)
	}

	s.encrypted = true
	s.identity = identity
	s.recipient = recipient
	return nil
}

// DisableEncryption decrypts every stored blob. The current password is required.
func (s *FileStore) DisableEncryption(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return fmt.Errorf("encryption is not enabled")
	}

	identity, _, err := s.verifyPassword(password)
	if err != nil {
		return err
	}

	files, err := s.blobFiles()
	if err != nil {
		return err
	}

	for _, path := range files {
		if err := transformFile(path, decrypter(identity)); err != nil {
			return fmt.Errorf("failed to decrypt %s: %w", filepath.Base(path), err)
		}
	}

	os.Remove(filepath.Join(s.baseDir, markerFile))
	os.Remove(filepath.Join(s.baseDir, verifyFile))

	s.encrypted = false
	s.identity = nil
	s.recipient = nil
	return nil
}

// blobFiles lists the files holding stored keys
func (s *FileStore) blobFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isBlob(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan files: %w", err)
	}
	return files, nil
}

// rollback decrypts files encrypted during a failed migration, best effort
func (s *FileStore) rollback(files []string, identity *age.ScryptIdentity) {
	for _, path := range files {
		_ = transformFile(path, decrypter(identity))
	}
}

// decrypter returns a transform that opens encrypted files and skips plain ones
func decrypter(identity *age.ScryptIdentity) func([]byte) ([]byte, bool, error) {
	return func(data []byte) ([]byte, bool, error) {
		if !isAgeEncrypted(data) {
			return nil, false, nil
		}
		out, err := decryptData(data, identity)
		return out, true, err
	}
}

// transformFile rewrites path in place with fn. fn reports false to leave
// the file untouched.
func transformFile(path string, fn func([]byte) ([]byte, bool, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, changed, err := fn(data)
	if err != nil || !changed {
		return err
	}
	return atomicWrite(path, out)
}

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
)

// MinPasswordLength is the shortest passphrase accepted by EnableEncryption
const MinPasswordLength = 8

// ErrWrongPassword is returned when a passphrase does not open the store
var ErrWrongPassword = errors.New("incorrect password")

// encryptData encrypts data for the passphrase recipient
func encryptData(data []byte, recipient age.Recipient) ([]byte, error) {
	var buf bytes.Buffer

	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decryptData opens Age-encrypted data with the passphrase identity
func decryptData(data []byte, identity age.Identity) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// keysFor derives the scrypt identity and recipient for password
func keysFor(password string) (*age.ScryptIdentity, *age.ScryptRecipient, error) {
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create identity: %w", err)
	}
	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create recipient: %w", err)
	}
	return identity, recipient, nil
}

// verifyPassword checks password against the verification file.
// Callers hold s.mu.
func (s *FileStore) verifyPassword(password string) (*age.ScryptIdentity, *age.ScryptRecipient, error) {
	identity, recipient, err := keysFor(password)
	if err != nil {
		return nil, nil, err
	}

	sealed, err := os.ReadFile(filepath.Join(s.baseDir, verifyFile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read verification file: %w", err)
	}

	plain, err := decryptData(sealed, identity)
	if err != nil || string(plain) != verifyMagic {
		return nil, nil, ErrWrongPassword
	}
	return identity, recipient, nil
}

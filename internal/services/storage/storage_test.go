package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadWriteKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	original := []byte(`[{"id":"g1","name":"Car"}]`)
	if err := store.Write("alice/goals", original); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	// Key maps to a per-user JSON file
	raw, err := os.ReadFile(filepath.Join(dir, "alice", "goals.json"))
	if err != nil {
		t.Fatalf("Expected file on disk: %v", err)
	}
	if string(raw) != string(original) {
		t.Errorf("Raw content = %q, want %q", raw, original)
	}

	read, err := store.Read("alice/goals")
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Read = %q, want %q", read, original)
	}

	if err := store.Write("bob/loans", []byte("[]")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if strings.Join(keys, ",") != "alice/goals,bob/loans" {
		t.Errorf("Keys = %v", keys)
	}

	if err := store.Delete("bob/loans"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete("bob/loans"); err != nil {
		t.Errorf("Deleting a missing key should not fail: %v", err)
	}
}

func TestReadMissingKey(t *testing.T) {
	store, _ := New(t.TempDir())

	_, err := store.Read("alice/nothing")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}
}

func TestInvalidKeys(t *testing.T) {
	store, _ := New(t.TempDir())

	for _, key := range []string{"", "/etc/passwd", "../outside", "alice/../../x", "alice//goals", "alice/.encrypted", `a\b`} {
		t.Run(key, func(t *testing.T) {
			if err := store.Write(key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("Write(%q) error = %v, want ErrInvalidKey", key, err)
			}
			if _, err := store.Read(key); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("Read(%q) error = %v, want ErrInvalidKey", key, err)
			}
		})
	}
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	original := []byte(`{"currency":{"code":"EUR"}}`)
	if err := store.Write("alice/preferences", original); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	path := filepath.Join(dir, "alice", "preferences.json")

	password := "testpassword123"
	if err := store.EnableEncryption(password); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}
	if !store.IsEncrypted() {
		t.Error("Expected IsEncrypted() to return true")
	}

	rawData, _ := os.ReadFile(path)
	if !isAgeEncrypted(rawData) {
		t.Error("File should be encrypted on disk")
	}

	read, err := store.Read("alice/preferences")
	if err != nil {
		t.Fatalf("Failed to read encrypted key: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch after encryption: got %q, want %q", read, original)
	}

	// A fresh store over the same directory starts locked
	reopened, _ := New(dir)
	if reopened.IsUnlocked() {
		t.Error("Reopened store should be locked")
	}
	if _, err := reopened.Read("alice/preferences"); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked, got %v", err)
	}
	if err := reopened.Write("alice/preferences", original); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked on write, got %v", err)
	}
	if err := reopened.Unlock(password); err != nil {
		t.Fatalf("Failed to unlock: %v", err)
	}
	if read, _ := reopened.Read("alice/preferences"); string(read) != string(original) {
		t.Errorf("Content mismatch after unlock")
	}

	if err := reopened.DisableEncryption(password); err != nil {
		t.Fatalf("Failed to disable encryption: %v", err)
	}
	if reopened.IsEncrypted() {
		t.Error("Expected IsEncrypted() to return false after disable")
	}
	rawData, _ = os.ReadFile(path)
	if string(rawData) != string(original) {
		t.Errorf("Raw content mismatch after decryption")
	}
	if _, err := os.Stat(filepath.Join(dir, markerFile)); !errors.Is(err, fs.ErrNotExist) {
		t.Error("Marker file should be removed")
	}
}

func TestWrongPassword(t *testing.T) {
	store, _ := New(t.TempDir())

	if err := store.Write("alice/goals", []byte(`[]`)); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if err := store.EnableEncryption("correctpassword"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}
	store.Lock()

	if err := store.Unlock("wrongpassword"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Expected ErrWrongPassword, got %v", err)
	}
	if err := store.DisableEncryption("wrongpassword"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Expected ErrWrongPassword on disable, got %v", err)
	}
}

func TestPasswordTooShort(t *testing.T) {
	store, _ := New(t.TempDir())

	if err := store.EnableEncryption("short"); err == nil {
		t.Error("Expected error for short password")
	}
	if store.IsEncrypted() {
		t.Error("Store should stay unencrypted")
	}
}

func TestNewKeysEncrypted(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	if err := store.EnableEncryption("testpassword123"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	content := []byte(`[{"id":"l1"}]`)
	if err := store.Write("alice/loans", content); err != nil {
		t.Fatalf("Failed to write new key: %v", err)
	}

	rawData, _ := os.ReadFile(filepath.Join(dir, "alice", "loans.json"))
	if !isAgeEncrypted(rawData) {
		t.Error("New key should be encrypted on disk")
	}

	read, err := store.Read("alice/loans")
	if err != nil {
		t.Fatalf("Failed to read new key: %v", err)
	}
	if string(read) != string(content) {
		t.Errorf("Content mismatch: got %q, want %q", read, content)
	}

	// Control files are not listed as keys
	keys, _ := store.Keys()
	if len(keys) != 1 || keys[0] != "alice/loans" {
		t.Errorf("Keys = %v, want [alice/loans]", keys)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()

	if _, err := store.Read("alice/goals"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}

	data := []byte("[1]")
	if err := store.Write("alice/goals", data); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data[1] = '2'

	read, _ := store.Read("alice/goals")
	if string(read) != "[1]" {
		t.Errorf("Store should keep its own copy, got %q", read)
	}

	_ = store.Delete("alice/goals")
	keys, _ := store.Keys()
	if len(keys) != 0 {
		t.Errorf("Keys after delete = %v", keys)
	}
}

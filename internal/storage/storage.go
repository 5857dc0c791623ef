// Package storage provides the key/value backends the vault persists its
// slices into. Every backend stores opaque byte values under string keys and
// treats an absent key as a valid state.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Backend is a synchronous key/value store
type Backend interface {
	// Get returns the value for key and whether it exists
	Get(key string) ([]byte, bool, error)
	// Set stores value under key, replacing any previous value
	Set(key string, value []byte) error
	// Remove deletes key; removing a missing key is not an error
	Remove(key string) error
	// Keys lists the stored keys in lexical order
	Keys() ([]string, error)
	Close() error
}

// Kind names a backend implementation
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindMemory Kind = "memory"
)

// ErrUnknownKind is returned by Open for an unsupported backend kind
var ErrUnknownKind = errors.New("unknown storage backend")

// DefaultDir returns the data directory used when none is configured
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".prompt-vault"), nil
}

// Open creates the backend of the given kind rooted at dataDir
func Open(kind Kind, dataDir string) (Backend, error) {
	if dataDir == "" && kind != KindMemory {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
		dataDir = dir
	}

	switch kind {
	case KindFile, "":
		return NewFileBackend(filepath.Join(dataDir, "store"))
	case KindSQLite:
		return NewSQLiteBackend(filepath.Join(dataDir, "vault.db"))
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

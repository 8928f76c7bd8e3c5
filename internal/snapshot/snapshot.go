// Package snapshot copies the library database to one or more stores after
// every mutating command and brings it back on restore.
package snapshot

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Store.Get when no snapshot exists for a library.
var ErrNotFound = errors.New("snapshot not found")

// ErrBehind is returned when a store holds a newer snapshot than the local
// library.
var ErrBehind = errors.New("local library is behind snapshot")

// Store keeps the latest snapshot of each library, together with the edit
// operation id it was taken after.
type Store interface {
	Name() string

	// Put stores a snapshot. size is the number of bytes that will be read from r.
	Put(ctx context.Context, libraryID string, r io.Reader, size int64, version int64) error

	// Get writes the snapshot of libraryID to w.
	Get(ctx context.Context, libraryID string, w io.Writer) error

	// Version returns the stored snapshot version, or 0 when there is none.
	Version(ctx context.Context, libraryID string) (int64, error)

	// ValidateSetup verifies that the store is reachable and writable.
	ValidateSetup(ctx context.Context) error
}

// Encryptor encrypts snapshots with a public key. Decryption needs the
// passphrase-protected private key, unlocked into a DecryptionContext.
type Encryptor interface {
	// Setup generates the key pair, protecting the private key with passphrase.
	Setup(passphrase string) error
	Encrypt(r io.Reader, w io.Writer) error
	Unlock(passphrase string) (DecryptionContext, error)
	// IsConfigured reports whether both key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory for one restore.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}

// Source produces a consistent copy of the library at destPath.
type Source interface {
	BackupTo(ctx context.Context, destPath string) error
}

// Logger takes slog-style alternating key/value args.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

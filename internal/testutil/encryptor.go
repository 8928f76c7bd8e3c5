package testutil

import (
	"icut-go/internal/encryption"
	"icut-go/internal/snapshot"
)

// NewTestEncryptor returns the deterministic snapshot encryptor. Its
// Unlock accepts any non-empty passphrase.
func NewTestEncryptor() snapshot.Encryptor {
	return encryption.NewTestEncryptor()
}

package encryption

import (
	"fmt"

	"icut-go/internal/config"
	"icut-go/internal/snapshot"
)

// NewEncryptorFromConfig creates the snapshot Encryptor for the configured
// type. Type "none" returns a nil Encryptor: snapshots are stored as plain
// sqlite files.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (snapshot.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		if cfg.PublicKeyPath == "" || cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("age encryption requires public_key_path and private_key_path")
		}
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}

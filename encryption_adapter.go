// Package recruitprefs provides an adapter for the encryption package.
package recruitprefs

import (
	"github.com/CreativeUnicorns/recruitprefs/encryption"
)

// EncryptionAdapter adapts encryption.Manager to the EncryptionManager interface.
type EncryptionAdapter struct {
	manager *encryption.Manager
}

// NewEncryptionAdapter creates an EncryptionAdapter with the key from the environment.
// It fails fast if the key is missing or too short.
func NewEncryptionAdapter() (*EncryptionAdapter, error) {
	manager, err := encryption.NewManager()
	if err != nil {
		return nil, err
	}
	return &EncryptionAdapter{manager: manager}, nil
}

// NewEncryptionAdapterWithKey creates an EncryptionAdapter with a provided key.
func NewEncryptionAdapterWithKey(key []byte) (*EncryptionAdapter, error) {
	manager, err := encryption.NewManagerWithKey(key)
	if err != nil {
		return nil, err
	}
	return &EncryptionAdapter{manager: manager}, nil
}

// Encrypt seals plaintext bound to associatedData.
func (e *EncryptionAdapter) Encrypt(plaintext, associatedData string) (string, error) {
	return e.manager.Encrypt(plaintext, associatedData)
}

// Decrypt opens a value produced by Encrypt with the same associatedData.
func (e *EncryptionAdapter) Decrypt(ciphertext, associatedData string) (string, error) {
	return e.manager.Decrypt(ciphertext, associatedData)
}

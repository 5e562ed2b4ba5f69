package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

const keychainService = "bnbpanel"

// ErrKeystoreUnavailable is returned when no keyring backend could be opened.
var ErrKeystoreUnavailable = errors.New("keystore not available")

// KeystoreBackend stores private keys by reference.
type KeystoreBackend interface {
	Store(name, hexKey string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// Keystore wraps OS keychain access.
type Keystore struct {
	ring keyring.Keyring
}

// DefaultKeystore returns a keystore backed by the OS keychain. fileDir is
// used by the encrypted-file fallback; pass "" for the keyring default.
func DefaultKeystore(fileDir string) *Keystore {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  fileDir,
	}

	// Headless Linux has no keychain daemon; allow the file backend.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		ring, _ = keyring.Open(keyring.Config{
			ServiceName:     keychainService,
			AllowedBackends: []keyring.BackendType{keyring.FileBackend},
			FileDir:         fileDir,
		})
	}

	return &Keystore{ring: ring}
}

// NewKeystore wraps an already opened keyring.
func NewKeystore(ring keyring.Keyring) *Keystore {
	return &Keystore{ring: ring}
}

// Store saves a private key for a wallet name and returns a reference key.
func (k *Keystore) Store(name, hexKey string) (string, error) {
	if k.ring == nil {
		return "", ErrKeystoreUnavailable
	}
	ref := keychainService + "." + name
	err := k.ring.Set(keyring.Item{
		Key:   ref,
		Data:  []byte(hexKey),
		Label: "bnbpanel wallet " + name,
	})
	if err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve fetches a private key by its reference.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if k.ring == nil {
		return "", ErrKeystoreUnavailable
	}
	item, err := k.ring.Get(ref)
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes a stored key. A key that is already gone is not an
// error; the file backend reports that as a missing file.
func (k *Keystore) Delete(ref string) error {
	if k.ring == nil {
		return nil
	}
	err := k.ring.Remove(ref)
	if err == nil || errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("keychain delete: %w", err)
}

// InMemoryKeystore keeps keys in memory (tests and throwaway sessions).
type InMemoryKeystore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewInMemoryKeystore creates an in-memory keystore.
func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, hexKey string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ref := keychainService + "." + name
	k.data[ref] = hexKey
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("key not found: %s", ref)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, ref)
	return nil
}

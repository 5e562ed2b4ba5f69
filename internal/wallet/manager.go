package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet types.
const (
	TypeWatchOnly = "watch-only"
	TypeSigning   = "signing"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
	ErrInvalidAddress = errors.New("invalid address")
)

// Wallet holds metadata for a single account. Private keys live in the
// keystore; only the reference is persisted.
type Wallet struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Type      string `json:"type"`
	KeyRef    string `json:"key_ref,omitempty"`
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// CanSign reports whether the wallet has a stored key.
func (w *Wallet) CanSign() bool {
	return w.Type == TypeSigning && w.KeyRef != ""
}

// Store is an interface for persisting wallets.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

// Manager handles wallet CRUD.
type Manager struct {
	store   Store
	keys    KeystoreBackend
	wallets map[string]*Wallet
	loaded  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithInMemoryStore uses an in-memory store (useful for tests).
func WithInMemoryStore() Option {
	return func(m *Manager) {
		m.store = &memStore{}
	}
}

// WithStore sets a custom store.
func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithKeystore sets where private keys are kept.
func WithKeystore(ks KeystoreBackend) Option {
	return func(m *Manager) {
		m.keys = ks
	}
}

// NewManager creates a new wallet manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		wallets: make(map[string]*Wallet),
		store:   &memStore{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.keys == nil {
		m.keys = NewInMemoryKeystore()
	}
	return m
}

// Keystore returns the backend holding private keys.
func (m *Manager) Keystore() KeystoreBackend {
	return m.keys
}

// AddWatchOnly registers an address without a key. It is enough for reads
// that depend on the user (ticket counts, contributions).
func (m *Manager) AddWatchOnly(name, address string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}
	m.wallets[name] = &Wallet{
		Name:      name,
		Address:   common.HexToAddress(address).Hex(),
		Type:      TypeWatchOnly,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return m.persist()
}

// AddWithKey derives an EVM address from a hex private key and stores the wallet.
func (m *Manager) AddWithKey(name, hexKey string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}

	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	ref, err := m.keys.Store(name, stripHexPrefix(hexKey))
	if err != nil {
		return fmt.Errorf("storing key: %w", err)
	}

	m.wallets[name] = &Wallet{
		Name:      name,
		Address:   crypto.PubkeyToAddress(privKey.PublicKey).Hex(),
		Type:      TypeSigning,
		KeyRef:    ref,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return m.persist()
}

// Get returns a wallet by name.
func (m *Manager) Get(name string) (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	w, ok := m.wallets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	return w, nil
}

// Remove deletes a wallet and its stored key.
func (m *Manager) Remove(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	w, ok := m.wallets[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	if w.KeyRef != "" {
		if err := m.keys.Delete(w.KeyRef); err != nil {
			return err
		}
	}
	delete(m.wallets, name)
	return m.persist()
}

// List returns all wallets sorted by name.
func (m *Manager) List() []*Wallet {
	m.load() //nolint:errcheck
	out := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetDefault marks a wallet as the default.
func (m *Manager) SetDefault(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, ok := m.wallets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	for _, w := range m.wallets {
		w.IsDefault = w.Name == name
	}
	return m.persist()
}

// Default returns the default wallet, or nil if none.
func (m *Manager) Default() *Wallet {
	m.load() //nolint:errcheck
	for _, w := range m.wallets {
		if w.IsDefault {
			return w
		}
	}
	if len(m.wallets) == 1 {
		for _, w := range m.wallets {
			return w
		}
	}
	return nil
}

// Resolve returns the named wallet, or the default one when name is empty.
func (m *Manager) Resolve(name string) (*Wallet, error) {
	if name != "" {
		return m.Get(name)
	}
	if w := m.Default(); w != nil {
		return w, nil
	}
	return nil, ErrWalletNotFound
}

// --- internal ---

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return err
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

func (m *Manager) persist() error {
	return m.store.Save(m.List())
}

func stripHexPrefix(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}

// --- in-memory store ---

type memStore struct {
	wallets []*Wallet
}

func (s *memStore) Load() ([]*Wallet, error) {
	return s.wallets, nil
}

func (s *memStore) Save(wallets []*Wallet) error {
	s.wallets = wallets
	return nil
}

// --- JSON file store ---

// JSONStore persists wallets to a JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed wallet store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load() ([]*Wallet, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var wallets []*Wallet
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return wallets, nil
}

func (s *JSONStore) Save(wallets []*Wallet) error {
	data, err := json.MarshalIndent(wallets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

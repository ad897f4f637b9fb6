package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"time"
)

// DefaultProfile is the profile used when none is named
const DefaultProfile = "default"

// APIKey is a Flickr application key stored under a profile name
type APIKey struct {
	Profile      string    `json:"profile"`
	Key          string    `json:"key"`
	Secret       string    `json:"secret,omitempty"`
	LastModified time.Time `json:"last_modified"`

	// Source names the store the key was read from. Not persisted.
	Source string `json:"-"`
}

// CredentialStore is the interface for storing and retrieving API keys
type CredentialStore interface {
	// Name identifies the backend in status output
	Name() string

	// Store saves the key under its profile
	Store(key *APIKey) error

	// Retrieve gets the key for a profile
	Retrieve(profile string) (*APIKey, error)

	// List returns all keys the backend can enumerate
	List() ([]*APIKey, error)

	// Delete removes the key for a profile
	Delete(profile string) error

	// Exists checks if a key is stored for a profile
	Exists(profile string) bool
}

// Manager handles key storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a manager backed by the system keychain when available,
// an encrypted file and finally the environment.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over the given backends, in order
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

var keyPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// ValidateKey checks that s looks like a Flickr API key (32 hex characters)
func ValidateKey(s string) error {
	if s == "" {
		return ErrInvalidCredentials
	}
	if !keyPattern.MatchString(s) {
		return fmt.Errorf("%w: expected 32 hexadecimal characters", ErrInvalidCredentials)
	}
	return nil
}

// Store saves the key using the first store that accepts it
func (m *Manager) Store(key *APIKey) error {
	if key == nil {
		return ErrInvalidCredentials
	}
	if key.Profile == "" {
		key.Profile = DefaultProfile
	}
	if err := ValidateKey(key.Key); err != nil {
		return err
	}

	key.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(key)
		if err == nil {
			key.Source = store.Name()
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store api key: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve gets the key from the first store that has it
func (m *Manager) Retrieve(profile string) (*APIKey, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	for _, store := range m.stores {
		if key, err := store.Retrieve(profile); err == nil && key != nil {
			key.Source = store.Name()
			return key, nil
		}
	}
	return nil, fmt.Errorf("%w: profile %s", ErrCredentialsNotFound, profile)
}

// RetrieveDefault returns the environment key when set, then the default
// profile, then whichever profile a store can enumerate first.
func (m *Manager) RetrieveDefault() (*APIKey, error) {
	for _, store := range m.stores {
		if env, ok := store.(*EnvironmentStore); ok {
			if key, err := env.Retrieve(""); err == nil {
				key.Source = env.Name()
				return key, nil
			}
		}
	}

	if key, err := m.Retrieve(DefaultProfile); err == nil {
		return key, nil
	}

	keys, err := m.List()
	if err == nil && len(keys) > 0 {
		return keys[0], nil
	}

	return nil, ErrCredentialsNotFound
}

// List returns keys from all stores, newest version per profile
func (m *Manager) List() ([]*APIKey, error) {
	byProfile := make(map[string]*APIKey)
	var order []string

	for _, store := range m.stores {
		keys, err := store.List()
		if err != nil {
			continue
		}
		for _, key := range keys {
			key.Source = store.Name()
			existing, ok := byProfile[key.Profile]
			if !ok {
				order = append(order, key.Profile)
			}
			if !ok || key.LastModified.After(existing.LastModified) {
				byProfile[key.Profile] = key
			}
		}
	}

	result := make([]*APIKey, 0, len(order))
	for _, profile := range order {
		result = append(result, byProfile[profile])
	}
	return result, nil
}

// Delete removes the key for profile from every store holding it
func (m *Manager) Delete(profile string) error {
	if profile == "" {
		profile = DefaultProfile
	}

	var deleted bool
	var lastErr error
	for _, store := range m.stores {
		if err := store.Delete(profile); err == nil {
			deleted = true
		} else if !errors.Is(err, ErrCredentialsNotFound) && !errors.Is(err, ErrStoreUnavailable) {
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("failed to delete api key: %w", lastErr)
	}
	return fmt.Errorf("%w: profile %s", ErrCredentialsNotFound, profile)
}

// getConfigDir returns the per-user configuration directory
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "flickrcrawler")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "flickrcrawler")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "flickrcrawler")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "flickrcrawler")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// Masked returns a copy of key with the secret parts hidden
func Masked(key *APIKey) *APIKey {
	if key == nil {
		return nil
	}
	out := *key
	out.Key = maskString(key.Key)
	if key.Secret != "" {
		out.Secret = maskString(key.Secret)
	}
	return &out
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

var (
	ErrCredentialsNotFound = errors.New("api key not found")
	ErrInvalidCredentials  = errors.New("invalid api key")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

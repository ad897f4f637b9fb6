package auth

import (
	"os"
	"time"
)

const (
	envAPIKey    = "FLICKRCRAWLER_API_KEY"
	envAPISecret = "FLICKRCRAWLER_API_SECRET"
)

// EnvironmentStore reads the key from FLICKRCRAWLER_API_KEY. It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Name() string { return "environment" }

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(key *APIKey) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment key for any profile
func (e *EnvironmentStore) Retrieve(profile string) (*APIKey, error) {
	value := os.Getenv(envAPIKey)
	if value == "" {
		return nil, ErrCredentialsNotFound
	}
	if profile == "" {
		profile = DefaultProfile
	}

	return &APIKey{
		Profile:      profile,
		Key:          value,
		Secret:       os.Getenv(envAPISecret),
		LastModified: time.Now(),
	}, nil
}

// List returns the environment key when one is set
func (e *EnvironmentStore) List() ([]*APIKey, error) {
	key, err := e.Retrieve("")
	if err != nil {
		return []*APIKey{}, nil
	}
	return []*APIKey{key}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(profile string) error {
	return ErrStoreUnavailable
}

// Exists checks if the environment key is set
func (e *EnvironmentStore) Exists(profile string) bool {
	return os.Getenv(envAPIKey) != ""
}

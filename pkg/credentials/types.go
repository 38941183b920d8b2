package credentials

import "time"

// Credentials represents the stored access tokens in credentials.toml.
type Credentials struct {
	Version  int                          `toml:"version"`
	Services map[string]ServiceCredential `toml:"services"`
}

// ServiceCredential holds the access token for a single worker service.
type ServiceCredential struct {
	AccessToken string    `toml:"access_token"`
	SavedAt     time.Time `toml:"saved_at"`
}

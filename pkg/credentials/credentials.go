// Package credentials stores the per-service access tokens the workers
// expect as bearer tokens.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/skillstream/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0

	// ServiceCareer is the career assistant worker.
	ServiceCareer = "career"

	// ServiceCourse is the course tutor worker.
	ServiceCourse = "course"
)

// ErrUnknownService is returned for a service name other than career or course.
var ErrUnknownService = errors.New("unknown service")

// serviceEnvVars maps services to the environment variable that overrides
// the stored token.
var serviceEnvVars = map[string]string{
	ServiceCareer: "SKILLSTREAM_CAREER_TOKEN",
	ServiceCourse: "SKILLSTREAM_COURSE_TOKEN",
}

// Manager manages reading and writing credentials.toml in the .skillstream/
// directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .skillstream/ directory; otherwise the standard dotdir
// resolution applies.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns an empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{
				Version:  currentVersion,
				Services: make(map[string]ServiceCredential),
			}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if creds.Services == nil {
		creds.Services = make(map[string]ServiceCredential)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetToken stores an access token for the given service.
func (m *Manager) SetToken(service, token string) error {
	if !IsSupportedService(service) {
		return fmt.Errorf("%w: %q", ErrUnknownService, service)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("cannot store an empty token")
	}

	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Services[service] = ServiceCredential{AccessToken: token, SavedAt: time.Now().UTC()}

	return m.Save(creds)
}

// GetToken returns the stored access token for the given service.
// Returns an empty string if no token is stored.
func (m *Manager) GetToken(service string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}

	sc, ok := creds.Services[service]
	if !ok {
		return "", nil
	}

	return sc.AccessToken, nil
}

// Token returns the token to use for service: the environment override when
// set, the stored token otherwise.
func (m *Manager) Token(service string) (string, error) {
	if env := EnvVarForService(service); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}
	return m.GetToken(service)
}

// RemoveToken deletes the stored credential for a service.
func (m *Manager) RemoveToken(service string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	delete(creds.Services, service)

	return m.Save(creds)
}

// ListServices returns the names of services that have stored credentials.
func (m *Manager) ListServices() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	services := make([]string, 0, len(creds.Services))
	for name := range creds.Services {
		services = append(services, name)
	}

	sort.Strings(services)

	return services, nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// EnvVarForService returns the environment variable name for a given service.
// Returns an empty string for unknown services.
func EnvVarForService(service string) string {
	return serviceEnvVars[service]
}

// SupportedServices returns the services that accept access tokens.
func SupportedServices() []string {
	return []string{ServiceCareer, ServiceCourse}
}

// IsSupportedService returns true if the given service is supported.
func IsSupportedService(service string) bool {
	return slices.Contains(SupportedServices(), service)
}

// Mask hides all but the last four characters of a token for display.
func Mask(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", 8) + token[len(token)-4:]
}

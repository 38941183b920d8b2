package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const sessionsFile = "sessions.json"

// Session is the resume state of one service: the id the worker assigned to
// the last conversation.
type Session struct {
	ConversationID string    `json:"conversation_id"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Sessions is the sessions.json file in a target directory. Keys are service
// names, optionally scoped (e.g. "career" or "tutor:<course id>").
type Sessions struct {
	path string
	mu   sync.Mutex
}

// Sessions returns the session store in the resolved target directory.
func (m *Manager) Sessions(overrideDir string) (*Sessions, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}
	return &Sessions{path: filepath.Join(dir, sessionsFile)}, nil
}

// Path returns the session file path.
func (s *Sessions) Path() string {
	return s.path
}

// Load returns the session stored under key, or nil if there is none.
func (s *Sessions) Load(key string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return nil, err
	}

	session, ok := all[key]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

// Save remembers conversationID under key.
func (s *Sessions) Save(key, conversationID string) error {
	if conversationID == "" {
		return errors.New("cannot save empty conversation id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}

	all[key] = Session{ConversationID: conversationID, UpdatedAt: time.Now().UTC()}
	return s.write(all)
}

// Clear forgets the session under key. Clearing a missing key is a no-op.
func (s *Sessions) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}

	if _, ok := all[key]; !ok {
		return nil
	}
	delete(all, key)

	if len(all) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing sessions: %w", err)
		}
		return nil
	}

	return s.write(all)
}

func (s *Sessions) read() (map[string]Session, error) {
	all := map[string]Session{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return all, nil
		}
		return nil, fmt.Errorf("reading sessions: %w", err)
	}

	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parsing sessions: %w", err)
	}

	return all, nil
}

func (s *Sessions) write(all map[string]Session) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling sessions: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing sessions: %w", err)
	}

	return nil
}

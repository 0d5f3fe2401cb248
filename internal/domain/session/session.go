// Package session holds the process-wide logged-in identity.
package session

import (
	"strings"
	"sync"

	"webshop/pkg/logger"
)

// Persistence stores the identity across restarts.
type Persistence interface {
	LoadEmail() (string, error)
	SaveEmail(email string) error
	ClearEmail() error
}

// Preferences remembers per-user form defaults.
type Preferences interface {
	ContactPhone(email string) (string, error)
	SetContactPhone(email, phone string) error
}

type Listener func(email string)

// Session is the logged-in user, identified by email only. A nil
// Persistence keeps the identity in memory.
type Session struct {
	mu          sync.RWMutex
	email       string
	persistence Persistence

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int
}

// New restores a persisted identity when there is one.
func New(p Persistence) *Session {
	s := &Session{persistence: p, listeners: make(map[int]Listener)}
	if p != nil {
		email, err := p.LoadEmail()
		if err != nil {
			logger.Warn("failed to restore session: %v", err)
		}
		s.email = normalize(email)
	}
	return s
}

func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

func (s *Session) LoggedIn() bool {
	return s.Email() != ""
}

// Set logs email in. Persistence failures are logged; the in-memory
// identity is set regardless.
func (s *Session) Set(email string) {
	email = normalize(email)
	s.mu.Lock()
	changed := s.email != email
	s.email = email
	s.mu.Unlock()

	if s.persistence != nil {
		if err := s.persistence.SaveEmail(email); err != nil {
			logger.Warn("failed to persist session: %v", err)
		}
	}
	if changed {
		s.notify(email)
	}
}

func (s *Session) Clear() {
	s.mu.Lock()
	changed := s.email != ""
	s.email = ""
	s.mu.Unlock()

	if s.persistence != nil {
		if err := s.persistence.ClearEmail(); err != nil {
			logger.Warn("failed to clear persisted session: %v", err)
		}
	}
	if changed {
		s.notify("")
	}
}

// Subscribe calls l with the new email ("" on logout) after every change.
func (s *Session) Subscribe(l Listener) func() {
	s.listenerMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

func (s *Session) notify(email string) {
	s.listenerMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenerMu.Unlock()

	for _, l := range listeners {
		l(email)
	}
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

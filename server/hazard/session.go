package hazard

import (
	"fmt"
	"sync"
)

// CredentialStore persists the credential pair of one user.
type CredentialStore interface {
	Save(creds Credentials) error
	Load() (Credentials, error)
	Clear() error
}

// Session is the single source of truth for one user's credentials. Loops
// subscribe to it instead of reading the store themselves.
type Session struct {
	store  CredentialStore
	logger Logger

	mu          sync.RWMutex
	creds       Credentials
	subscribers []*subscription
}

type subscription struct {
	fn func(Credentials)
}

// NewSession creates a session backed by store. Call Restore before use.
func NewSession(store CredentialStore, logger Logger) *Session {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Session{store: store, logger: logger}
}

// Restore loads the stored credentials once. A read failure is logged and
// treated as logged out.
func (s *Session) Restore() Credentials {
	creds, err := s.store.Load()
	if err != nil {
		s.logger.Warn("Failed to restore credentials, treating session as logged out", "error", err.Error())
		creds = Credentials{}
	}
	if !creds.IsPresent() {
		creds = Credentials{}
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()

	return creds
}

// Credentials returns a copy of the cached credentials.
func (s *Session) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Set persists creds and notifies subscribers.
func (s *Session) Set(creds Credentials) error {
	if !creds.IsPresent() {
		return fmt.Errorf("refusing to store partial credentials")
	}
	if err := s.store.Save(creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()

	s.notify(creds)
	return nil
}

// Clear removes the stored credentials and notifies subscribers.
func (s *Session) Clear() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	s.mu.Lock()
	s.creds = Credentials{}
	s.mu.Unlock()

	s.notify(Credentials{})
	return nil
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription.
func (s *Session) Subscribe(fn func(Credentials)) func() {
	sub := &subscription{fn: fn}

	s.mu.Lock()
	s.subscribers = append(s.subscribers, sub)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, existing := range s.subscribers {
			if existing == sub {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) notify(creds Credentials) {
	s.mu.RLock()
	subs := make([]*subscription, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(creds)
	}
}

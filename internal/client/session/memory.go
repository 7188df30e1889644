package session

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store. It backs tests and runs where no
// database path is configured.
type MemoryStore struct {
	mu       sync.Mutex
	sess     Session
	language string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.sess), nil
}

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = copySession(s)
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = Session{}
	return nil
}

func (m *MemoryStore) Revoke(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess.Token == "" || m.sess.Token != token {
		return false, nil
	}
	m.sess = Session{}
	return true, nil
}

func (m *MemoryStore) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.Token, nil
}

func (m *MemoryStore) Language(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.language, nil
}

func (m *MemoryStore) SetLanguage(_ context.Context, lang string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.language = lang
	return nil
}

func copySession(s Session) Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

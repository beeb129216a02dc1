package testutil

import (
	"context"
	"sync"

	"github.com/fastygo/todo/domain"
)

// FakeSessions is an in-memory implementation of repository.SessionRepository for testing.
type FakeSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session

	// Error injection for testing
	SaveErr error
}

// NewFakeSessions creates an empty FakeSessions.
func NewFakeSessions() *FakeSessions {
	return &FakeSessions{sessions: make(map[string]domain.Session)}
}

func (f *FakeSessions) Get(ctx context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.Metadata = copyMeta(s.Metadata)
	return &s, nil
}

func (f *FakeSessions) Save(ctx context.Context, session *domain.Session) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := *session
	s.Metadata = copyMeta(session.Metadata)
	f.sessions[session.ID] = s
	return nil
}

func (f *FakeSessions) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (f *FakeSessions) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func copyMeta(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

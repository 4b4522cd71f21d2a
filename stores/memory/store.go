package memory

import (
	"canvas-templates/core"
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// memStore keeps the token for the lifetime of the process only.
type memStore struct {
	mu    sync.RWMutex
	token string
}

// NewStore creates a new in-memory token store.
func NewStore() *memStore {
	return &memStore{}
}

func (s *memStore) Load(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", core.ErrTokenNotFound
	}
	return s.token, nil
}

func (s *memStore) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	logrus.WithField("key", core.TokenKey).Debug("Token saved in memory")
	return nil
}

func (s *memStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

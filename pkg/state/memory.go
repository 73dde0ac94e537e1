package state

import (
	"context"
	"sync"
)

// MemoryBackend keeps subscriptions in process memory.
type MemoryBackend struct {
	mu   sync.Mutex
	subs map[string]Subscription
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{subs: make(map[string]Subscription)}
}

func (b *MemoryBackend) Store(nodeID string) SubscriptionStore {
	return &MemoryStore{backend: b, nodeID: nodeID}
}

// NewMemoryStore returns a standalone in-memory store for one node.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{backend: NewMemoryBackend()}
}

// MemoryStore is the in-memory SubscriptionStore.
type MemoryStore struct {
	backend *MemoryBackend
	nodeID  string
}

func (s *MemoryStore) Load(ctx context.Context) (*Subscription, error) {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	sub, ok := s.backend.subs[s.nodeID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (s *MemoryStore) Save(ctx context.Context, sub Subscription) error {
	if err := sub.validate(); err != nil {
		return err
	}

	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.subs[s.nodeID] = sub
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	delete(s.backend.subs, s.nodeID)
	return nil
}

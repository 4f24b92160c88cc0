package distributor

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// MemoryStore keeps policies and progress checkpoints in memory. It
// backs the crank daemon's local view and the engine tests; the
// on-chain PDAs remain the ground truth in production.
type MemoryStore struct {
	mu       sync.RWMutex
	policies map[solana.PublicKey]PolicyConfig
	progress map[solana.PublicKey]Progress
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		policies: make(map[solana.PublicKey]PolicyConfig),
		progress: make(map[solana.PublicKey]Progress),
	}
}

func (s *MemoryStore) Policy(_ context.Context, vault solana.PublicKey) (PolicyConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	policy, ok := s.policies[vault]
	if !ok {
		return PolicyConfig{}, ErrPolicyNotFound
	}
	return policy, nil
}

func (s *MemoryStore) SavePolicy(_ context.Context, vault solana.PublicKey, policy PolicyConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[vault] = policy
	return nil
}

func (s *MemoryStore) Progress(_ context.Context, vault solana.PublicKey) (Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress[vault], nil
}

func (s *MemoryStore) SaveProgress(_ context.Context, vault solana.PublicKey, progress Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[vault] = progress
	return nil
}

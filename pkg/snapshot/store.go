package snapshot

import (
	"sync"

	"lintang/transitx/pkg/server"
)

// Store owns the current network snapshot. A request takes Current once and keeps using that
// network even if a newer one is swapped in meanwhile.
type Store struct {
	mu      sync.RWMutex
	current *Network
}

func NewStore(n *Network) (*Store, error) {
	s := &Store{}
	if _, err := s.Swap(n); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Current() *Network {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Swap installs n and returns the previous snapshot. n must already be built.
func (s *Store) Swap(n *Network) (*Network, error) {
	if n == nil || !n.Built() {
		return nil, server.WrapErrorf(nil, server.ErrBadParamInput, "network snapshot must be built before it is published")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	s.current = n
	return prev, nil
}

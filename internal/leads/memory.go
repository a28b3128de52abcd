package leads

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps leads in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	leads []Lead
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert implements Store.
func (s *MemoryStore) Insert(_ context.Context, lead Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = append(s.leads, lead)
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]Lead, error) {
	s.mu.RLock()
	out := make([]Lead, len(s.leads))
	copy(out, s.leads)
	s.mu.RUnlock()

	SortNewestFirst(out)
	return out, nil
}

// SortNewestFirst orders leads by CreatedAt descending. ULIDs sort by time,
// so ties fall back to the ID.
func SortNewestFirst(list []Lead) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

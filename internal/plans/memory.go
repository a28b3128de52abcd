package plans

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps plans in process memory. Contents are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string]Plan)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, userID string, plan Plan) (string, error) {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	plan.UserID = userID

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.plans[plan.ID]; exists {
		return "", fmt.Errorf("plan %s already exists", plan.ID)
	}
	s.plans[plan.ID] = plan
	return plan.ID, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, userID string) ([]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]Plan, 0)
	for _, p := range s.plans {
		if p.UserID == userID {
			owned = append(owned, p)
		}
	}
	SortNewestFirst(owned)
	return owned, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, userID, planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plans[planID]
	if !ok || p.UserID != userID {
		return ErrNotFound
	}
	delete(s.plans, planID)
	return nil
}

// SortNewestFirst orders plans by CreatedAt descending, breaking ties by ID.
func SortNewestFirst(list []Plan) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

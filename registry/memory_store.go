package registry

import (
	"sort"
	"sync"

	"userregistry/model"
)

// MemoryStore is a Store kept in process memory. It copies profiles in and out so
// callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[model.Identity]*model.Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[model.Identity]*model.Profile)}
}

func (s *MemoryStore) GetProfile(id model.Identity) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[id].Clone(), nil
}

func (s *MemoryStore) PutProfile(p *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p.Clone()
	return nil
}

// ListProfiles returns every profile ordered by identity.
func (s *MemoryStore) ListProfiles() ([]*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

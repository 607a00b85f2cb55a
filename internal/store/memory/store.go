// Package memory is a ProfileStore kept in process memory, used by tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kollektive-hackathon/flog-progression/internal/pkg/model"
	"github.com/kollektive-hackathon/flog-progression/internal/store"
)

var _ store.ProfileStore = (*Store)(nil)

type Store struct {
	mu       sync.RWMutex
	profiles map[string]*model.Profile
}

func New() *Store {
	return &Store{profiles: make(map[string]*model.Profile)}
}

func (s *Store) Get(_ context.Context, username string) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.profiles[username]; ok {
		return p.Clone(), nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) Upsert(_ context.Context, p *model.Profile, expectedVersion int64) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.profiles[p.Username]
	switch {
	case !exists && expectedVersion != 0:
		return nil, store.ErrVersionConflict
	case exists && current.Version != expectedVersion:
		return nil, store.ErrVersionConflict
	}

	stored := p.Clone()
	stored.Version = expectedVersion + 1
	s.profiles[p.Username] = stored
	return stored.Clone(), nil
}

func (s *Store) FindByHold(_ context.Context, auctionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var usernames []string
	for username, p := range s.profiles {
		if _, ok := p.HeldBids.Amount(auctionID); ok {
			usernames = append(usernames, username)
		}
	}
	sort.Strings(usernames)
	return usernames, nil
}

func (s *Store) List(_ context.Context, offset, limit int) ([]*model.Profile, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usernames := make([]string, 0, len(s.profiles))
	for username := range s.profiles {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	total := int64(len(usernames))
	if offset >= len(usernames) {
		return []*model.Profile{}, total, nil
	}
	usernames = usernames[offset:]
	if limit > 0 && limit < len(usernames) {
		usernames = usernames[:limit]
	}

	page := make([]*model.Profile, 0, len(usernames))
	for _, username := range usernames {
		page = append(page, s.profiles[username].Clone())
	}
	return page, total, nil
}

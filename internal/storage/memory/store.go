// Package memory is a process-local storage.UserStore used for local runs and tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/hongminglow/mf-tracker-be/internal/models"
	"github.com/hongminglow/mf-tracker-be/internal/storage"
)

var _ storage.UserStore = (*Store)(nil)

// Store keeps users in maps guarded by a single mutex.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*models.User
	byEmail map[string]int64
}

// NewUserStore returns an empty store.
func NewUserStore() *Store {
	return &Store{
		byID:    make(map[int64]*models.User),
		byEmail: make(map[string]int64),
	}
}

// Close is a no-op kept for parity with the Postgres store.
func (s *Store) Close() {}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	s.nextID++
	now := time.Now().UTC()
	user.ID = s.nextID
	user.SavedSchemes = []int{}
	user.Version = 0
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := user
	s.byID[user.ID] = &stored
	s.byEmail[user.Email] = user.ID
	return clone(stored), nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return clone(*s.byID[id]), nil
}

func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return clone(*user), nil
}

func (s *Store) UpdateSavedSchemes(_ context.Context, id int64, mutate storage.SchemeMutation) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	next, changed := mutate(slices.Clone(user.SavedSchemes))
	if changed {
		user.SavedSchemes = slices.Clone(next)
		user.Version++
		user.UpdatedAt = time.Now().UTC()
	}
	return next, nil
}

func clone(u models.User) models.User {
	u.SavedSchemes = slices.Clone(u.SavedSchemes)
	if u.SavedSchemes == nil {
		u.SavedSchemes = []int{}
	}
	return u
}

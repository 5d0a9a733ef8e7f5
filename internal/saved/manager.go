// Package saved manages each user's bookmarked scheme codes.
package saved

import (
	"context"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/hongminglow/mf-tracker-be/internal/storage"
)

// Manager mutates saved codes through the store's atomic update so that no
// user state is held between requests. A missing user surfaces as storage.ErrNotFound.
type Manager struct {
	store storage.UserStore
}

func NewManager(store storage.UserStore) *Manager {
	return &Manager{store: store}
}

// Add saves code for the user. Saving an already saved code is a no-op.
func (m *Manager) Add(ctx context.Context, userID int64, code int) ([]int, error) {
	return m.store.UpdateSavedSchemes(ctx, userID, func(current []int) ([]int, bool) {
		if mapset.NewThreadUnsafeSet(current...).Contains(code) {
			return current, false
		}
		return append(current, code), true
	})
}

// Remove drops code from the user's saved codes. Removing an absent code is a no-op.
func (m *Manager) Remove(ctx context.Context, userID int64, code int) ([]int, error) {
	return m.store.UpdateSavedSchemes(ctx, userID, func(current []int) ([]int, bool) {
		if !mapset.NewThreadUnsafeSet(current...).Contains(code) {
			return current, false
		}
		return slices.DeleteFunc(slices.Clone(current), func(c int) bool { return c == code }), true
	})
}

// List returns the user's saved codes.
func (m *Manager) List(ctx context.Context, userID int64) ([]int, error) {
	user, err := m.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.SavedSchemes == nil {
		return []int{}, nil
	}
	return user.SavedSchemes, nil
}

package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/mf-tracker-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrConflict indicates a conditional update kept losing to concurrent writers.
var ErrConflict = errors.New("record modified concurrently")

// SchemeMutation receives the current saved codes and returns the next ones.
// Returning changed=false skips the write.
type SchemeMutation func(current []int) (next []int, changed bool)

// UserStore captures persistence operations needed by the services.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	// UpdateSavedSchemes applies mutate as one atomic read-modify-write on the
	// user's saved codes and returns the resulting codes.
	UpdateSavedSchemes(ctx context.Context, id int64, mutate SchemeMutation) ([]int, error)
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/mf-tracker-be/internal/models"
	"github.com/hongminglow/mf-tracker-be/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

// maxUpdateAttempts bounds the optimistic retry loop in UpdateSavedSchemes.
const maxUpdateAttempts = 10

const userColumns = `id, name, email, password_hash, saved_schemes, version, created_at, updated_at`

// Store provides Postgres-backed persistence for users.
type Store struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new Store and runs migrations.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByEmail fetches a user by email address. The match is case-sensitive.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// UpdateSavedSchemes reads the saved codes with their version and writes the
// mutated codes only if the version is unchanged, retrying on a lost race.
func (s *Store) UpdateSavedSchemes(ctx context.Context, id int64, mutate storage.SchemeMutation) ([]int, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var (
			current []int64
			version int64
		)
		err := s.pool.QueryRow(ctx, `SELECT saved_schemes, version FROM users WHERE id = $1`, id).Scan(&current, &version)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, storage.ErrNotFound
			}
			return nil, fmt.Errorf("load saved schemes: %w", err)
		}

		next, changed := mutate(toInts(current))
		if !changed {
			return next, nil
		}

		tag, err := s.pool.Exec(ctx, `
			UPDATE users
			SET saved_schemes = $2, version = version + 1, updated_at = NOW()
			WHERE id = $1 AND version = $3`,
			id, toInt64s(next), version)
		if err != nil {
			return nil, fmt.Errorf("update saved schemes: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return next, nil
		}
	}
	return nil, storage.ErrConflict
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var saved []int64
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &saved, &user.Version, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	user.SavedSchemes = toInts(saved)
	return user, nil
}

func toInts(in []int64) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

func toInt64s(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

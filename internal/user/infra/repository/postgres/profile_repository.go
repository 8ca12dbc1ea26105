package postgres

import (
	"context"
	"errors"

	"github.com/atelier-works/atelier-engine/internal/user/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of pgxpool.Pool the repository needs, so pgxmock
// can stand in during tests.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProfileRepository implements domain.ProfileRepository for PostgreSQL.
type ProfileRepository struct {
	db querier
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db querier) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID fetches a profile by id, mapping no-rows to ErrProfileNotFound.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `SELECT id, username, email, role FROM profiles WHERE id = $1`

	profile := &domain.Profile{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Email,
		&profile.Role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}

	return profile, nil
}

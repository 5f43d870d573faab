package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/pointshop/internal/domain"
)

// AuthorityRepository stores user authority levels in the user_authority table
type AuthorityRepository struct {
	db *pgxpool.Pool
}

// NewAuthorityRepository creates a new AuthorityRepository
func NewAuthorityRepository(db *pgxpool.Pool) *AuthorityRepository {
	return &AuthorityRepository{db: db}
}

// GetAuthority returns the user's level, zero when no record exists
func (r *AuthorityRepository) GetAuthority(ctx context.Context, user domain.Identity) (int, error) {
	var level int
	err := r.db.QueryRow(ctx, SQLSelectAuthority, user.Platform, user.UserID).Scan(&level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf(ErrMsgFailedToGetAuthority, err)
	}
	return level, nil
}

// SetAuthority creates or overwrites the user's level
func (r *AuthorityRepository) SetAuthority(ctx context.Context, user domain.Identity, level int) error {
	if _, err := r.db.Exec(ctx, SQLUpsertAuthority, user.Platform, user.UserID, level); err != nil {
		return fmt.Errorf(ErrMsgFailedToSetAuthority, err)
	}
	return nil
}

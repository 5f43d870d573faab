package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/logger"
)

// SafeRollback rolls back a transaction and logs any error that isn't ErrTxClosed
func SafeRollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}

// hashUserKey creates a consistent int64 hash from identity + key for advisory locking
func hashUserKey(user domain.Identity, key string) int64 {
	h := sha256.Sum256([]byte(user.String() + HashSeparator + key))
	// First 8 bytes, MSB masked so the value stays positive
	return int64(binary.BigEndian.Uint64(h[:8]) & HashMaskPositiveInt64)
}

// isUniqueViolation reports whether err is a unique constraint violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == PgErrorCodeUniqueViolation
}

var likeEscaper = strings.NewReplacer(
	LikeEscapeChar, LikeEscapeChar+LikeEscapeChar,
	"%", LikeEscapeChar+"%",
	"_", LikeEscapeChar+"_",
)

// escapeLike makes user input safe to embed in a LIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// nullString maps the empty string to NULL
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

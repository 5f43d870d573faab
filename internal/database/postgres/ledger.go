package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/logger"
)

// LedgerRepository keeps point balances in the user_balances table.
// A user without a row holds the configured starting balance.
type LedgerRepository struct {
	db             *pgxpool.Pool
	defaultBalance int64
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *pgxpool.Pool, defaultBalance int64) *LedgerRepository {
	return &LedgerRepository{db: db, defaultBalance: defaultBalance}
}

// GetBalance returns the user's balance
func (r *LedgerRepository) GetBalance(ctx context.Context, user domain.Identity) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, SQLSelectBalance, user.Platform, user.UserID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.defaultBalance, nil
		}
		return 0, fmt.Errorf(ErrMsgFailedToGetBalance, err)
	}
	return balance, nil
}

// SetBalance overwrites the user's balance
func (r *LedgerRepository) SetBalance(ctx context.Context, user domain.Identity, balance int64) error {
	if _, err := r.db.Exec(ctx, SQLUpsertBalance, user.Platform, user.UserID, balance); err != nil {
		return fmt.Errorf(ErrMsgFailedToSetBalance, err)
	}
	return nil
}

// Debit subtracts amount only if the balance covers it and returns the new balance
func (r *LedgerRepository) Debit(ctx context.Context, user domain.Identity, amount int64) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, tx)

	if _, err := tx.Exec(ctx, SQLSeedBalance, user.Platform, user.UserID, r.defaultBalance); err != nil {
		return 0, fmt.Errorf(ErrMsgFailedToDebit, err)
	}

	var balance int64
	err = tx.QueryRow(ctx, SQLConditionalDebit, user.Platform, user.UserID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.FromContext(ctx).Debug(LogMsgDebitRefused, "user", user.String(), "amount", amount)
			return 0, fmt.Errorf(ErrMsgFailedToDebit, domain.ErrInsufficientFunds)
		}
		return 0, fmt.Errorf(ErrMsgFailedToDebit, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf(ErrMsgFailedToCommitTransaction, err)
	}
	return balance, nil
}

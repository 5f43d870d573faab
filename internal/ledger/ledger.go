// Package ledger adapts the external point-balance store.
//
// Backends implement Ledger, and those able to debit atomically also
// implement Debitor. Callers go through Guard, which bounds every call and
// applies the failure policy.
package ledger

import (
	"context"

	"github.com/osse101/pointshop/internal/domain"
)

// Ledger is the balance get/set contract of the currency collaborator
type Ledger interface {
	GetBalance(ctx context.Context, user domain.Identity) (int64, error)
	SetBalance(ctx context.Context, user domain.Identity, balance int64) error
}

// Debitor is implemented by backends that can subtract an amount only when the
// balance covers it, in one atomic step. It returns the new balance, or an
// error wrapping domain.ErrInsufficientFunds when the balance is too low.
type Debitor interface {
	Debit(ctx context.Context, user domain.Identity, amount int64) (int64, error)
}

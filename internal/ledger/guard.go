package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/logger"
	"github.com/osse101/pointshop/internal/metrics"
)

// GuardConfig configures a Guard
type GuardConfig struct {
	Timeout        time.Duration
	FailOpen       bool
	DefaultBalance int64
}

// Guard bounds ledger calls with a timeout and applies the failure policy.
// Balance lookups fail closed unless FailOpen is set; debits never fail open.
type Guard struct {
	inner  Ledger
	config GuardConfig
}

// NewGuard wraps a Ledger backend
func NewGuard(inner Ledger, config GuardConfig) *Guard {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Guard{inner: inner, config: config}
}

// Balance returns the user's balance.
// On failure it returns ErrLedgerUnavailable, or the default balance when the
// guard is configured to fail open.
func (g *Guard) Balance(ctx context.Context, user domain.Identity) (int64, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	start := time.Now()
	balance, err := g.inner.GetBalance(callCtx, user)
	observe(OpGetBalance, start, err)
	if err == nil {
		return balance, nil
	}

	log := logger.FromContext(ctx)
	if g.config.FailOpen {
		log.Warn(LogMsgBalanceFailOpen, "user", user.String(), "default", g.config.DefaultBalance, "error", err)
		return g.config.DefaultBalance, nil
	}
	log.Error(LogMsgBalanceFailClosed, "user", user.String(), "error", err)
	return 0, fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
}

// Debit subtracts amount from the user's balance and returns the new balance.
// Every failure, including a balance that dropped below amount since it was
// checked, wraps domain.ErrDebitFailed.
func (g *Guard) Debit(ctx context.Context, user domain.Identity, amount int64) (int64, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	start := time.Now()
	var (
		balance int64
		err     error
	)
	if d, ok := g.inner.(Debitor); ok {
		balance, err = d.Debit(callCtx, user, amount)
	} else {
		balance, err = g.checkThenSet(callCtx, user, amount)
	}
	observe(OpDebit, start, err)

	if err != nil {
		logger.FromContext(ctx).Error(LogMsgDebitFailed, "user", user.String(), "amount", amount, "error", err)
		return 0, fmt.Errorf(ErrMsgDebitFailedFormat, domain.ErrDebitFailed, err)
	}
	return balance, nil
}

// checkThenSet debits through plain get/set. Callers serialize per identity.
func (g *Guard) checkThenSet(ctx context.Context, user domain.Identity, amount int64) (int64, error) {
	current, err := g.inner.GetBalance(ctx, user)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgGetBalanceFailed, err)
	}
	if current < amount {
		return 0, domain.ErrInsufficientFunds
	}
	next := current - amount
	if err := g.inner.SetBalance(ctx, user, next); err != nil {
		return 0, fmt.Errorf(ErrMsgSetBalanceFailed, err)
	}
	return next, nil
}

func observe(op string, start time.Time, err error) {
	result := ResultOK
	if err != nil && !errors.Is(err, domain.ErrInsufficientFunds) {
		result = ResultError
	}
	metrics.LedgerCallDuration.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}

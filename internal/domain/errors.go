package domain

import (
	"errors"
	"fmt"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgNotFound              = "not found"
	ErrMsgItemNotFound          = "item not found"
	ErrMsgValidation            = "validation failed"
	ErrMsgDuplicateName         = "item name already exists"
	ErrMsgInvalidKind           = "invalid item kind"
	ErrMsgMissingCommand        = "command items require a command"
	ErrMsgInvalidRoleLevel      = "role level out of range"
	ErrMsgInsufficientFunds     = "insufficient funds"
	ErrMsgOutOfStock            = "out of stock"
	ErrMsgRoleNotHigher         = "role is not higher than current authority"
	ErrMsgCooldown              = "entitlement on cooldown"
	ErrMsgExhausted             = "entitlement exhausted"
	ErrMsgDebitFailed           = "debit failed"
	ErrMsgAuthorityUpdateFailed = "authority update failed"
	ErrMsgPermissionDenied      = "permission denied"
	ErrMsgInconsistentState     = "inconsistent state after debit"
	ErrMsgLedgerUnavailable     = "ledger unavailable"
	ErrMsgInvalidInput          = "invalid input"
	ErrMsgTxClosed              = "tx is closed"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrNotFound     = errors.New(ErrMsgNotFound)
	ErrItemNotFound = fmt.Errorf("%w: %s", ErrNotFound, ErrMsgItemNotFound)

	ErrValidation       = errors.New(ErrMsgValidation)
	ErrDuplicateName    = fmt.Errorf("%w: %s", ErrValidation, ErrMsgDuplicateName)
	ErrInvalidKind      = fmt.Errorf("%w: %s", ErrValidation, ErrMsgInvalidKind)
	ErrMissingCommand   = fmt.Errorf("%w: %s", ErrValidation, ErrMsgMissingCommand)
	ErrInvalidRoleLevel = fmt.Errorf("%w: %s", ErrValidation, ErrMsgInvalidRoleLevel)
	ErrInvalidInput     = fmt.Errorf("%w: %s", ErrValidation, ErrMsgInvalidInput)

	ErrInsufficientFunds = errors.New(ErrMsgInsufficientFunds)
	ErrOutOfStock        = errors.New(ErrMsgOutOfStock)
	ErrRoleNotHigher     = errors.New(ErrMsgRoleNotHigher)
	ErrCooldown          = errors.New(ErrMsgCooldown)
	ErrExhausted         = errors.New(ErrMsgExhausted)

	ErrDebitFailed           = errors.New(ErrMsgDebitFailed)
	ErrAuthorityUpdateFailed = errors.New(ErrMsgAuthorityUpdateFailed)
	ErrLedgerUnavailable     = errors.New(ErrMsgLedgerUnavailable)

	ErrPermissionDenied  = errors.New(ErrMsgPermissionDenied)
	ErrInconsistentState = errors.New(ErrMsgInconsistentState)
)

// ValidationError describes a rejected field. It matches ErrValidation and,
// when Kind is set, the more specific sentinel as well.
type ValidationError struct {
	Field   string
	Message string
	Kind    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s for %s: %s", ErrMsgValidation, e.Field, e.Message)
}

// Is allows errors.Is() to match both ErrValidation and the specific kind.
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return e.Kind != nil && target == e.Kind
}

// InsufficientFundsError carries the amounts needed to explain the rejection.
type InsufficientFundsError struct {
	ItemName  string
	Required  int64
	Available int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s for %s: need %d, have %d", ErrMsgInsufficientFunds, e.ItemName, e.Required, e.Available)
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// OutOfStockError names the sold out item.
type OutOfStockError struct {
	ItemName string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMsgOutOfStock, e.ItemName)
}

func (e *OutOfStockError) Is(target error) bool { return target == ErrOutOfStock }

// RoleNotHigherError reports the caller's level against the item's level.
type RoleNotHigherError struct {
	ItemName string
	Current  int
	Required int
}

func (e *RoleNotHigherError) Error() string {
	return fmt.Sprintf("%s: %s is level %d, caller already has %d", ErrMsgRoleNotHigher, e.ItemName, e.Required, e.Current)
}

func (e *RoleNotHigherError) Is(target error) bool { return target == ErrRoleNotHigher }

// CooldownError reports whole minutes until the command can be used again.
type CooldownError struct {
	Command          string
	RemainingMinutes int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: %s available in %dm", ErrMsgCooldown, e.Command, e.RemainingMinutes)
}

func (e *CooldownError) Is(target error) bool { return target == ErrCooldown }

// ExhaustedError reports a command with no uses left.
type ExhaustedError struct {
	Command string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMsgExhausted, e.Command)
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }

// InconsistencyError marks a failure after the balance was already debited.
// The purchase row (when present) and the amount identify what to reconcile.
type InconsistencyError struct {
	User       Identity
	ItemID     int64
	Amount     int64
	PurchaseID int64
	Err        error
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: user=%s item=%d amount=%d purchase=%d: %v",
		ErrMsgInconsistentState, e.User, e.ItemID, e.Amount, e.PurchaseID, e.Err)
}

func (e *InconsistencyError) Is(target error) bool { return target == ErrInconsistentState }

func (e *InconsistencyError) Unwrap() error { return e.Err }

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/pointshop/internal/domain"
)

func TestMapServiceError(t *testing.T) {
	raceLost := fmt.Errorf("%w: %w", domain.ErrDebitFailed, domain.ErrInsufficientFunds)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"nil", nil, http.StatusInternalServerError, CodeInternal},
		{"validation", &domain.ValidationError{Field: "name", Message: "is required"}, http.StatusBadRequest, CodeValidation},
		{"duplicate name", fmt.Errorf("%w: Boost", domain.ErrDuplicateName), http.StatusBadRequest, CodeValidation},
		{"item not found", domain.ErrItemNotFound, http.StatusNotFound, CodeItemNotFound},
		{"not found", domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"insufficient funds", &domain.InsufficientFundsError{ItemName: "x", Required: 5, Available: 1}, http.StatusPaymentRequired, CodeInsufficientFunds},
		{"out of stock", &domain.OutOfStockError{ItemName: "x"}, http.StatusConflict, CodeOutOfStock},
		{"role not higher", &domain.RoleNotHigherError{ItemName: "VIP", Current: 3, Required: 2}, http.StatusConflict, CodeRoleNotHigher},
		{"cooldown", &domain.CooldownError{Command: "boost", RemainingMinutes: 4}, http.StatusTooManyRequests, CodeCooldown},
		{"exhausted", &domain.ExhaustedError{Command: "boost"}, http.StatusForbidden, CodeExhausted},
		{"permission denied", domain.ErrPermissionDenied, http.StatusForbidden, CodePermissionDenied},
		{"lost debit race", raceLost, http.StatusBadGateway, CodeDebitFailed},
		{"authority failed", fmt.Errorf("%w: timeout", domain.ErrAuthorityUpdateFailed), http.StatusBadGateway, CodeAuthorityFailed},
		{"ledger unavailable", domain.ErrLedgerUnavailable, http.StatusServiceUnavailable, CodeLedgerUnavailable},
		{"inconsistent", &domain.InconsistencyError{Err: domain.ErrAuthorityUpdateFailed}, http.StatusInternalServerError, CodeInconsistentState},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := mapServiceError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestMapServiceError_HidesInternalCause(t *testing.T) {
	_, body := mapServiceError(errors.New("pq: password authentication failed for user shop"))
	assert.Equal(t, ErrMsgInternal, body.Message)
	assert.Empty(t, body.Details)
}

func TestMapServiceError_Details(t *testing.T) {
	_, body := mapServiceError(&domain.CooldownError{Command: "boost", RemainingMinutes: 4})
	assert.Equal(t, "boost", body.Details["command"])
	assert.Equal(t, 4, body.Details["remaining_minutes"])
}

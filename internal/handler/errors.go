package handler

import (
	"errors"
	"net/http"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/logger"
)

// mapServiceError converts a service error into a status code and a body the
// front-end can format. Internal causes are never echoed to the client.
func mapServiceError(err error) (int, ErrorResponse) {
	var (
		validation *domain.ValidationError
		funds      *domain.InsufficientFundsError
		stock      *domain.OutOfStockError
		role       *domain.RoleNotHigherError
		cooldown   *domain.CooldownError
		exhausted  *domain.ExhaustedError
	)

	// Inconsistency wraps the cause it followed, and a lost debit race wraps
	// both DebitFailed and InsufficientFunds, so their order matters.
	switch {
	case err == nil:
		return http.StatusInternalServerError, ErrorResponse{Code: CodeInternal, Message: ErrMsgInternal}
	case errors.Is(err, domain.ErrInconsistentState):
		return http.StatusInternalServerError, ErrorResponse{Code: CodeInconsistentState, Message: ErrMsgInconsistent}
	case errors.Is(err, domain.ErrDebitFailed):
		return http.StatusBadGateway, ErrorResponse{Code: CodeDebitFailed, Message: ErrMsgDebitFailed}
	case errors.Is(err, domain.ErrAuthorityUpdateFailed):
		return http.StatusBadGateway, ErrorResponse{Code: CodeAuthorityFailed, Message: ErrMsgAuthorityFailed}
	case errors.Is(err, domain.ErrLedgerUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{Code: CodeLedgerUnavailable, Message: ErrMsgUnavailable}
	case errors.As(err, &validation):
		return http.StatusBadRequest, ErrorResponse{
			Code:    CodeValidation,
			Message: validation.Error(),
			Details: map[string]interface{}{"field": validation.Field},
		}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{Code: CodeValidation, Message: err.Error()}
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, ErrorResponse{Code: CodeItemNotFound, Message: ErrMsgItemNotFound}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Code: CodeNotFound, Message: ErrMsgNotFound}
	case errors.As(err, &funds):
		return http.StatusPaymentRequired, ErrorResponse{
			Code:    CodeInsufficientFunds,
			Message: funds.Error(),
			Details: map[string]interface{}{"item": funds.ItemName, "required": funds.Required, "available": funds.Available},
		}
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired, ErrorResponse{Code: CodeInsufficientFunds, Message: domain.ErrMsgInsufficientFunds}
	case errors.As(err, &stock):
		return http.StatusConflict, ErrorResponse{
			Code:    CodeOutOfStock,
			Message: stock.Error(),
			Details: map[string]interface{}{"item": stock.ItemName},
		}
	case errors.As(err, &role):
		return http.StatusConflict, ErrorResponse{
			Code:    CodeRoleNotHigher,
			Message: role.Error(),
			Details: map[string]interface{}{"item": role.ItemName, "current": role.Current, "required": role.Required},
		}
	case errors.As(err, &cooldown):
		return http.StatusTooManyRequests, ErrorResponse{
			Code:    CodeCooldown,
			Message: cooldown.Error(),
			Details: map[string]interface{}{"command": cooldown.Command, "remaining_minutes": cooldown.RemainingMinutes},
		}
	case errors.As(err, &exhausted):
		return http.StatusForbidden, ErrorResponse{
			Code:    CodeExhausted,
			Message: exhausted.Error(),
			Details: map[string]interface{}{"command": exhausted.Command},
		}
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, ErrorResponse{Code: CodePermissionDenied, Message: domain.ErrMsgPermissionDenied}
	}
	return http.StatusInternalServerError, ErrorResponse{Code: CodeInternal, Message: ErrMsgInternal}
}

// respondServiceError logs a failed service call and writes the mapped response
func respondServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	status, body := mapServiceError(err)

	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(action+" failed", "error", err, "code", body.Code)
	} else {
		log.Info(action+" rejected", "error", err, "code", body.Code)
	}

	respondJSON(w, status, body)
}

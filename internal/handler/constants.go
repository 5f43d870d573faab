package handler

// Error codes returned in ErrorResponse.Code
const (
	CodeValidation        = "validation_failed"
	CodeInvalidRequest    = "invalid_request"
	CodeNotFound          = "not_found"
	CodeItemNotFound      = "item_not_found"
	CodeInsufficientFunds = "insufficient_funds"
	CodeOutOfStock        = "out_of_stock"
	CodeRoleNotHigher     = "role_not_higher"
	CodeCooldown          = "cooldown"
	CodeExhausted         = "exhausted"
	CodeDebitFailed       = "debit_failed"
	CodeAuthorityFailed   = "authority_update_failed"
	CodeLedgerUnavailable = "ledger_unavailable"
	CodePermissionDenied  = "permission_denied"
	CodeInconsistentState = "inconsistent_state"
	CodeInternal          = "internal_error"
)

// Generic HTTP error messages for client responses.
// These intentionally do not expose internal error details.
const (
	ErrMsgInternal          = "Something went wrong"
	ErrMsgInconsistent      = "Your points were spent but the purchase could not be completed. An admin has been alerted."
	ErrMsgDebitFailed       = "Could not take points from your balance. Nothing was charged."
	ErrMsgAuthorityFailed   = "Could not update your role"
	ErrMsgUnavailable       = "Server is temporarily unavailable. Please try again later."
	ErrMsgItemNotFound      = "Item not found"
	ErrMsgNotFound          = "Resource not found"
	ErrMsgInvalidRequest    = "Invalid request body"
	ErrMsgInvalidRequestSum = "Invalid request"
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidQueryParam = "Invalid %s query parameter"
	ErrMsgMissingActor      = "X-Actor header must be platform:user_id"
)

// Success messages
const (
	MsgItemDeleted = "Item deleted"
)

// Log messages
const (
	LogMsgEncodeFailed       = "Failed to encode JSON response"
	LogMsgWriteFailed        = "Failed to write response buffer"
	LogMsgDecodeFailed       = "Failed to decode request"
	LogMsgReadinessFailed    = "Readiness check failed"
	LogMsgAdminRequestDenied = "Admin request denied"
)

// HTTP headers and values
const (
	HeaderContentType = "Content-Type"
	HeaderActor       = "X-Actor"
	ContentTypeJSON   = "application/json"
)

// Query parameters
const (
	ParamPlatform = "platform"
	ParamUserID   = "user_id"
	ParamPage     = "page"
	ParamPageSize = "page_size"
	ParamKind     = "kind"
	ParamID       = "id"
)

// Health statuses
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation returns a generic 400 validation error with a caller message.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrSharesSum(sum float64) *AppError {
	return New("VAL_002", fmt.Sprintf("revenue shares must sum to 100, got %.2f", sum), http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_003", "Amount must be a positive integer number of cents", http.StatusBadRequest)
}

// ---- Ledger (LED) ----

func ErrInsufficientBalance() *AppError {
	return New("LED_001", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrWalletDeactivated() *AppError {
	return New("LED_002", "Wallet is deactivated", http.StatusForbidden)
}

func ErrDuplicateCredit() *AppError {
	return New("LED_003", "Payment session already credited", http.StatusConflict)
}

// ---- Lookup (RES) ----

func ErrNotFound(entity string) *AppError {
	return New("RES_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Tickets & admission (PASS) ----

func ErrEventNotOnSale() *AppError {
	return New("PASS_001", "Event is not on sale", http.StatusConflict)
}

// ---- Payouts (PAYOUT) ----

func ErrPayoutTransition(from, to string) *AppError {
	return New("PAYOUT_001", fmt.Sprintf("payout cannot move from %s to %s", from, to), http.StatusConflict)
}

func ErrPayoutExceedsAccrued() *AppError {
	return New("PAYOUT_002", "Requested amount exceeds accrued vendor revenue", http.StatusUnprocessableEntity)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbiddenRole() *AppError {
	return New("AUTH_004", "Account role does not permit this action", http.StatusForbidden)
}

func ErrInvalidGatewayKey() *AppError {
	return New("AUTH_005", "Invalid gateway key", http.StatusUnauthorized)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- External providers (EXT) ----

func ErrPaymentProvider(err error) *AppError {
	return Wrap("EXT_001", "Payment provider request failed", http.StatusBadGateway, err)
}

func ErrIdentityProvider(err error) *AppError {
	return Wrap("EXT_002", "Identity verification provider request failed", http.StatusBadGateway, err)
}

func ErrWebhookSignature() *AppError {
	return New("EXT_003", "Webhook signature verification failed", http.StatusUnauthorized)
}

// ---- System (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_002", "Internal database error", http.StatusInternalServerError, err)
}

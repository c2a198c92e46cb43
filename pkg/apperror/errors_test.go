package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New("VAL_001", "bad input", http.StatusBadRequest)
	assert.Equal(t, "[VAL_001] bad input", e.Error())

	wrapped := Wrap("SYS_001", "boom", http.StatusInternalServerError, fmt.Errorf("pg: down"))
	assert.Contains(t, wrapped.Error(), "pg: down")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	e := InternalError(inner)
	assert.ErrorIs(t, e, inner)
}

func TestAppError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{Validation("x"), http.StatusBadRequest},
		{ErrSharesSum(95.5), http.StatusBadRequest},
		{ErrInsufficientBalance(), http.StatusPaymentRequired},
		{ErrDuplicateCredit(), http.StatusConflict},
		{ErrNotFound("wallet"), http.StatusNotFound},
		{ErrPayoutTransition("REJECTED", "PROCESSED"), http.StatusConflict},
		{ErrInvalidToken(), http.StatusUnauthorized},
		{ErrRateLimitExceeded(), http.StatusTooManyRequests},
		{ErrPaymentProvider(errors.New("timeout")), http.StatusBadGateway},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, c.err.HTTPStatus, c.err.Code)
	}
}

func TestErrSharesSum_Message(t *testing.T) {
	e := ErrSharesSum(99.90)
	require.Equal(t, "VAL_002", e.Code)
	assert.Contains(t, e.Message, "99.90")
}

func TestErrNotFound_Entity(t *testing.T) {
	e := ErrNotFound("ghost pass")
	assert.Equal(t, "ghost pass not found", e.Message)
}

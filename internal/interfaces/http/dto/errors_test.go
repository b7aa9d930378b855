package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		domainCode string
		want       string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"BUSINESS_RULE", ErrCodeBusinessRule},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"LOCK_WAIT_TIMEOUT", ErrCodeLockTimeout},
		{"OWNER_PROTECTED", ErrCodeOwnerProtected},
		{"INVALID_NAME", ErrCodeValidation},
		{"INVALID_YEAR", ErrCodeValidation},
		{"SOMETHING_NEW", ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.domainCode, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeErrorCode(tt.domainCode))
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeLockTimeout, http.StatusConflict},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeBusinessRule, http.StatusBadRequest},
		{ErrCodeOwnerProtected, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{"ERR_NEVER_SEEN", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewConflictResponse(t *testing.T) {
	resp := NewConflictResponse("stale write", "req-1", 7)

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeConcurrencyConflict, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	if assert.NotNil(t, resp.Error.ServerVersion) {
		assert.Equal(t, 7, *resp.Error.ServerVersion)
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handleError(t *testing.T, err error) (int, dto.Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	h := &BaseHandler{}
	h.HandleError(c, err)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHandleError(t *testing.T) {
	t.Run("version conflict carries the server version", func(t *testing.T) {
		status, resp := handleError(t, shared.NewConflictError(5))

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, dto.ErrCodeConcurrencyConflict, resp.Error.Code)
		if assert.NotNil(t, resp.Error.ServerVersion) {
			assert.Equal(t, 5, *resp.Error.ServerVersion)
		}
	})

	t.Run("business rule maps to 400", func(t *testing.T) {
		status, resp := handleError(t, shared.NewBusinessRuleError("Order can only be generated from a closed_won opportunity."))

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, dto.ErrCodeBusinessRule, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "closed_won")
	})

	t.Run("forbidden maps to 403", func(t *testing.T) {
		status, resp := handleError(t, shared.ErrForbidden)

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		status, resp := handleError(t, shared.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("owner protection maps to 400", func(t *testing.T) {
		status, resp := handleError(t, shared.ErrOwnerProtected)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, dto.ErrCodeOwnerProtected, resp.Error.Code)
	})

	t.Run("lock timeout maps to 409", func(t *testing.T) {
		status, resp := handleError(t, shared.ErrLockWaitTimeout)

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, dto.ErrCodeLockTimeout, resp.Error.Code)
	})

	t.Run("unexpected errors map to 500 without leaking detail", func(t *testing.T) {
		status, resp := handleError(t, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "pq:")
	})
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/savings/backend/internal/interfaces/http/dto"
	"github.com/savings/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		recorded bool
	}{
		{
			name:   "not found",
			err:    shared.NewKindError(shared.KindNotFound, "GROUP_NOT_FOUND", "Group not found"),
			status: http.StatusNotFound,
			code:   "GROUP_NOT_FOUND",
		},
		{
			name:   "denied",
			err:    shared.NewKindError(shared.KindAuthorizationDenied, "NOT_A_MEMBER", "Not a member"),
			status: http.StatusForbidden,
			code:   "NOT_A_MEMBER",
		},
		{
			name:   "capacity",
			err:    shared.NewKindError(shared.KindCapacityExceeded, "GROUP_FULL", "Group is full"),
			status: http.StatusConflict,
			code:   "GROUP_FULL",
		},
		{
			name:   "wrapped invalid state",
			err:    fmt.Errorf("record: %w", shared.NewKindError(shared.KindInvalidState, "GROUP_NOT_ACTIVE", "Group is not active")),
			status: http.StatusUnprocessableEntity,
			code:   "GROUP_NOT_ACTIVE",
		},
		{
			name:     "unknown error is hidden",
			err:      errors.New("connection reset by peer"),
			status:   http.StatusInternalServerError,
			code:     dto.ErrCodeInternal,
			recorded: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/", "")
			h := &BaseHandler{}

			h.HandleError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.code, resp.Error.Code)
			assert.NotContains(t, resp.Error.Message, "connection reset")
			assert.Equal(t, tc.recorded, len(c.Errors) > 0)
		})
	}
}

func TestBaseHandler_ErrorEchoesRequestID(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/", "")
	c.Set(middleware.RequestIDKey, "req-42")

	(&BaseHandler{}).BadRequest(c, "nope")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "req-42", resp.Error.RequestID)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
}

func TestBaseHandler_GetUserID(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/", "")
		_, ok := (&BaseHandler{}).getUserID(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("present", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/", "")
		id := uuid.New()
		c.Set(middleware.UserIDKey, id.String())
		got, ok := (&BaseHandler{}).getUserID(c)
		assert.True(t, ok)
		assert.Equal(t, id, got)
	})
}

func TestBaseHandler_PathUUID(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/groups/abc", "")
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	_, ok := (&BaseHandler{}).pathUUID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid id", decodeResponse(t, w).Error.Message)
}

func TestBaseHandler_BindJSON(t *testing.T) {
	t.Run("validation failure lists fields", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/", `{"group_id":"not-a-uuid","amount":"0"}`)
		var req RecordContributionRequest

		ok := (&BaseHandler{}).bindJSON(c, &req)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		fields := make([]string, 0, len(resp.Error.Details))
		for _, d := range resp.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"group_id", "amount"}, fields)
	})

	t.Run("malformed body", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/", `{"group_id":`)
		var req RecordContributionRequest

		assert.False(t, (&BaseHandler{}).bindJSON(c, &req))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decodeResponse(t, w).Error.Code)
	})

	t.Run("valid body", func(t *testing.T) {
		body := fmt.Sprintf(`{"group_id":%q,"amount":"250.50","status":"pending"}`, uuid.NewString())
		c, _ := newTestContext(http.MethodPost, "/", body)
		var req RecordContributionRequest

		require.True(t, (&BaseHandler{}).bindJSON(c, &req))
		assert.Equal(t, "250.5", req.Amount.String())
		assert.Equal(t, "pending", req.Status)
	})
}

func TestBaseHandler_SuccessWithMeta(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/", "")

	(&BaseHandler{}).SuccessWithMeta(c, []string{"a", "b"}, 41, 2, 20)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

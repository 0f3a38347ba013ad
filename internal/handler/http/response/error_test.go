package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "reason", Message: "reason is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"profile not found", leave.ErrProfileNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"request not found", fmt.Errorf("wrapped: %w", leave.ErrLeaveRequestNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"invalid range", leave.ErrInvalidRange, http.StatusBadRequest, "BAD_REQUEST"},
		{"overlap", leave.ErrOverlapConflict, http.StatusConflict, "CONFLICT"},
		{"inactive", leave.ErrProfileInactive, http.StatusConflict, "CONFLICT"},
		{"back to pending", leave.ErrInvalidTransition, http.StatusConflict, "CONFLICT"},
		{"rejection comment", leave.ErrRejectionCommentRequired, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"forbidden", user.ErrNotResourceOwner, http.StatusForbidden, "FORBIDDEN"},
		{"permissions", fmt.Errorf("%w: required 'x'", user.ErrInsufficientPermissions), http.StatusForbidden, "FORBIDDEN"},
		{"storage", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestHandleError_InsufficientBalanceDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, &leave.InsufficientBalanceError{
		LeaveType: leave.LeaveTypeSick,
		Available: decimal.RequireFromString("1.5"),
		Requested: decimal.NewFromInt(3),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "insufficient Sick leave balance. Available: 1.5, Requested: 3", body.Error.Message)
	assert.Equal(t, "1.5", body.Error.Details["available"])
	assert.Equal(t, "3", body.Error.Details["requested"])
	assert.Equal(t, "Sick", body.Error.Details["leaveType"])
}

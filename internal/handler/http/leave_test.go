package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-engine/internal/repository/memory"
	leaveService "github.com/cmlabs-hris/leave-engine/internal/service/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestAccessExp = "1h"
	handlerTestSecret    = "test-secret-key-for-jwt"
	testEmployeeID       = "emp-1"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	server     *httptest.Server
	jwtService jwt.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	profiles := memory.NewLeaveProfileRepository()
	settings := memory.NewLeaveSettingsRepository()
	svc := leaveService.NewLeaveService(
		profiles,
		settings,
		leaveService.NewRequestService(profiles, settings),
		leaveService.NewReportService(profiles),
	)

	jwtService := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	router := NewRouter(jwtService, logger, []string{"http://localhost:3000"}, NewLeaveHandler(svc))

	ts := &testServer{server: httptest.NewServer(router), jwtService: jwtService}
	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) token(t *testing.T, userID string, role user.Role) string {
	t.Helper()
	token, _, err := ts.jwtService.GenerateAccessToken(userID, role)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}, headers map[string]string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func (ts *testServer) setup(t *testing.T) (adminToken, employeeToken string) {
	t.Helper()
	adminToken = ts.token(t, "admin-1", user.RoleAdmin)
	employeeToken = ts.token(t, testEmployeeID, user.RoleEmployee)

	resp, _ := ts.do(t, http.MethodPost, "/api/v1/leave/profile", adminToken, map[string]string{
		"employeeId":   testEmployeeID,
		"employeeName": "Ada Lovelace",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return adminToken, employeeToken
}

func applyBody(leaveType, start, end string) map[string]interface{} {
	return map[string]interface{}{
		"leaveType": leaveType,
		"startDate": start,
		"endDate":   end,
		"reason":    "family trip",
	}
}

func TestLeaveHandler_RequiresToken(t *testing.T) {
	ts := newTestServer(t)

	resp, env := ts.do(t, http.MethodGet, "/api/v1/leave/calendar", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestLeaveHandler_RejectsForeignToken(t *testing.T) {
	ts := newTestServer(t)
	foreign := jwt.NewJWTService("another-secret", handlerTestAccessExp)
	token, _, err := foreign.GenerateAccessToken("admin-1", user.RoleAdmin)
	require.NoError(t, err)

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/leave/stats", token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLeaveHandler_CreateProfileTwice(t *testing.T) {
	ts := newTestServer(t)
	adminToken, _ := ts.setup(t)

	resp, env := ts.do(t, http.MethodPost, "/api/v1/leave/profile", adminToken, map[string]string{
		"employeeId": testEmployeeID,
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
}

func TestLeaveHandler_ApplyAndApprove(t *testing.T) {
	ts := newTestServer(t)
	adminToken, employeeToken := ts.setup(t)

	resp, env := ts.do(t, http.MethodPost, "/api/v1/leave/apply/"+testEmployeeID, employeeToken,
		applyBody("Casual", "2024-01-08", "2024-01-12"), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var applied struct {
		LeaveID string  `json:"leaveId"`
		Days    float64 `json:"days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &applied))
	assert.NotEmpty(t, applied.LeaveID)
	assert.Equal(t, 5.0, applied.Days)

	resp, env = ts.do(t, http.MethodPut, "/api/v1/leave/status/"+testEmployeeID+"/"+applied.LeaveID, adminToken,
		map[string]string{"status": "Approved"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Leave Approved successfully", env.Message)

	resp, env = ts.do(t, http.MethodGet, "/api/v1/leave/employee/"+testEmployeeID, employeeToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var leaves struct {
		Leaves []struct {
			LeaveID string `json:"leaveId"`
			Status  string `json:"status"`
		} `json:"leaves"`
		Balance struct {
			LeaveTypeWiseBalance map[string]float64 `json:"leaveTypeWiseBalance"`
		} `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &leaves))
	require.Len(t, leaves.Leaves, 1)
	assert.Equal(t, "Approved", leaves.Leaves[0].Status)
	assert.Equal(t, 5.0, leaves.Balance.LeaveTypeWiseBalance["Casual"])
}

func TestLeaveHandler_ApplyErrors(t *testing.T) {
	ts := newTestServer(t)
	_, employeeToken := ts.setup(t)

	t.Run("validation", func(t *testing.T) {
		resp, env := ts.do(t, http.MethodPost, "/api/v1/leave/apply/"+testEmployeeID, employeeToken,
			applyBody("Vacation", "2024-01-08", "not-a-date"), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.NotNil(t, env.Error)
		assert.Contains(t, env.Error.Details, "leaveType")
		assert.Contains(t, env.Error.Details, "endDate")
	})

	t.Run("insufficient balance", func(t *testing.T) {
		resp, env := ts.do(t, http.MethodPost, "/api/v1/leave/apply/"+testEmployeeID, employeeToken,
			applyBody("Casual", "2024-02-05", "2024-02-23"), nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.NotNil(t, env.Error)
		assert.Equal(t, "10", env.Error.Details["available"])
		assert.Equal(t, "15", env.Error.Details["requested"])
	})

	t.Run("weekend only", func(t *testing.T) {
		resp, _ := ts.do(t, http.MethodPost, "/api/v1/leave/apply/"+testEmployeeID, employeeToken,
			applyBody("Sick", "2024-01-06", "2024-01-07"), nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("overlap", func(t *testing.T) {
		resp, _ := ts.do(t, http.MethodPost, "/api/v1/leave/apply/"+testEmployeeID, employeeToken,
			applyBody("Sick", "2024-03-04", "2024-03-05"), nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, _ = ts.do(t, http.MethodPost, "/api/v1/leave/apply/"+testEmployeeID, employeeToken,
			applyBody("Paid", "2024-03-05", "2024-03-06"), nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("someone else's profile", func(t *testing.T) {
		resp, _ := ts.do(t, http.MethodPost, "/api/v1/leave/apply/emp-2", employeeToken,
			applyBody("Casual", "2024-01-08", "2024-01-08"), nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestLeaveHandler_IdempotencyKey(t *testing.T) {
	ts := newTestServer(t)
	_, employeeToken := ts.setup(t)
	headers := map[string]string{"Idempotency-Key": "apply-123"}

	_, first := ts.do(t, http.MethodPost, "/api/v1/leave/apply/"+testEmployeeID, employeeToken,
		applyBody("Casual", "2024-01-08", "2024-01-09"), headers)
	resp, second := ts.do(t, http.MethodPost, "/api/v1/leave/apply/"+testEmployeeID, employeeToken,
		applyBody("Casual", "2024-01-08", "2024-01-09"), headers)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.JSONEq(t, string(first.Data), string(second.Data))
}

func TestLeaveHandler_RejectWithoutComment(t *testing.T) {
	ts := newTestServer(t)
	adminToken, employeeToken := ts.setup(t)

	_, env := ts.do(t, http.MethodPost, "/api/v1/leave/apply/"+testEmployeeID, employeeToken,
		applyBody("Casual", "2024-01-08", "2024-01-09"), nil)
	var applied struct {
		LeaveID string `json:"leaveId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &applied))

	resp, env := ts.do(t, http.MethodPut, "/api/v1/leave/status/"+testEmployeeID+"/"+applied.LeaveID, adminToken,
		map[string]string{"status": "Rejected"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "adminComment")
}

func TestLeaveHandler_AdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	adminToken, employeeToken := ts.setup(t)

	for _, path := range []string{
		"/api/v1/leave/stats",
		"/api/v1/leave/settings",
		"/api/v1/leave/all-requests",
		"/api/v1/leave/all-requests/export",
	} {
		resp, _ := ts.do(t, http.MethodGet, path, employeeToken, nil, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/leave/stats", adminToken, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/api/v1/leave/calendar", employeeToken, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLeaveHandler_SettingsAdmin(t *testing.T) {
	ts := newTestServer(t)
	adminToken, _ := ts.setup(t)

	resp, _ := ts.do(t, http.MethodPost, "/api/v1/leave/holiday", adminToken, map[string]interface{}{
		"holidayName": "Founders Day",
		"holidayDate": "2024-01-10",
		"holidayType": "Company",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPut, "/api/v1/leave/policy", adminToken, map[string]interface{}{
		"policies": []map[string]interface{}{{"leaveType": "Sick", "maxLeavesPerYear": 12}},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := ts.do(t, http.MethodGet, "/api/v1/leave/settings", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var settings struct {
		LeavePolicy []map[string]interface{} `json:"leavePolicy"`
		Holidays    []map[string]interface{} `json:"holidays"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &settings))
	assert.Len(t, settings.LeavePolicy, 1)
	require.Len(t, settings.Holidays, 1)
	assert.Equal(t, "Founders Day", settings.Holidays[0]["holidayName"])
}

func TestLeaveHandler_Export(t *testing.T) {
	ts := newTestServer(t)
	adminToken, _ := ts.setup(t)

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/leave/all-requests/export", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "leave-requests-")
}

func TestLeaveHandler_LogsServiceErrors(t *testing.T) {
	var logs bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	ts := newTestServer(t)
	adminToken, _ := ts.setup(t)

	resp, env := ts.do(t, http.MethodPut, "/api/v1/leave/status/nobody/507f1f77bcf86cd799439011", adminToken,
		map[string]string{"status": "Approved"}, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)

	assert.Contains(t, logs.String(), "UpdateStatus service error")
	assert.Contains(t, logs.String(), leave.ErrProfileNotFound.Error())
}

package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	xlsxContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type LeaveHandler interface {
	CreateProfile(w http.ResponseWriter, r *http.Request)
	SetProfileActive(w http.ResponseWriter, r *http.Request)
	GetEmployeeLeaves(w http.ResponseWriter, r *http.Request)

	ApplyLeave(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)

	AddHoliday(w http.ResponseWriter, r *http.Request)
	ReplacePolicy(w http.ResponseWriter, r *http.Request)
	GetSettings(w http.ResponseWriter, r *http.Request)

	Calendar(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	AllRequests(w http.ResponseWriter, r *http.Request)
	ExportRequests(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// CreateProfile implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateProfile decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	res, err := l.leaveService.CreateProfile(r.Context(), principal, req)
	if err != nil {
		slog.Error("CreateProfile service error", "error", err)
		response.HandleError(w, err)
		return
	}

	if !res.Created {
		response.SuccessWithMessage(w, "Leave profile already exists", res.Profile)
		return
	}
	response.Created(w, "Leave profile created successfully", res.Profile)
}

// SetProfileActive implements LeaveHandler.
func (l *LeaveHandlerImpl) SetProfileActive(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.SetProfileActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SetProfileActive decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeId")

	profile, err := l.leaveService.SetProfileActive(r.Context(), principal, req)
	if err != nil {
		slog.Error("SetProfileActive service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave profile updated successfully", profile)
}

// GetEmployeeLeaves implements LeaveHandler.
func (l *LeaveHandlerImpl) GetEmployeeLeaves(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	leaves, err := l.leaveService.GetEmployeeLeaves(r.Context(), principal, employeeID)
	if err != nil {
		slog.Error("GetEmployeeLeaves service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, leaves)
}

// ApplyLeave implements LeaveHandler.
func (l *LeaveHandlerImpl) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.ApplyLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ApplyLeave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Path and header override anything in the body
	req.EmployeeID = chi.URLParam(r, "employeeId")
	req.IdempotencyKey = r.Header.Get(idempotencyKeyHeader)

	res, err := l.leaveService.ApplyLeave(r.Context(), principal, req)
	if err != nil {
		slog.Error("ApplyLeave service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave applied successfully", res)
}

// UpdateStatus implements LeaveHandler.
func (l *LeaveHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateStatus decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeId")
	req.LeaveID = chi.URLParam(r, "leaveId")

	res, err := l.leaveService.UpdateLeaveStatus(r.Context(), principal, req)
	if err != nil {
		slog.Error("UpdateStatus service error", "error", err)
		response.HandleError(w, err)
		return
	}

	if !res.Changed {
		response.SuccessWithMessage(w, "Leave status unchanged", res)
		return
	}
	response.SuccessWithMessage(w, fmt.Sprintf("Leave %s successfully", res.Status), res)
}

// AddHoliday implements LeaveHandler.
func (l *LeaveHandlerImpl) AddHoliday(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.AddHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AddHoliday decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	holiday, err := l.leaveService.AddHoliday(r.Context(), principal, req)
	if err != nil {
		slog.Error("AddHoliday service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday added successfully", holiday)
}

// ReplacePolicy implements LeaveHandler.
func (l *LeaveHandlerImpl) ReplacePolicy(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.ReplacePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ReplacePolicy decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	settings, err := l.leaveService.ReplacePolicy(r.Context(), principal, req)
	if err != nil {
		slog.Error("ReplacePolicy service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave policy updated successfully", settings)
}

// GetSettings implements LeaveHandler.
func (l *LeaveHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	settings, err := l.leaveService.GetSettings(r.Context(), principal)
	if err != nil {
		slog.Error("GetSettings service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, settings)
}

// Calendar implements LeaveHandler.
func (l *LeaveHandlerImpl) Calendar(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	events, err := l.leaveService.CalendarView(r.Context(), principal)
	if err != nil {
		slog.Error("Calendar service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, events)
}

// Stats implements LeaveHandler.
func (l *LeaveHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	stats, err := l.leaveService.LeaveStats(r.Context(), principal, time.Now())
	if err != nil {
		slog.Error("Stats service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, stats)
}

// AllRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) AllRequests(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	views, err := l.leaveService.AllLeaveRequests(r.Context(), principal)
	if err != nil {
		slog.Error("AllRequests service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, views)
}

// ExportRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ExportRequests(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	// Buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := l.leaveService.ExportLeaveRequests(r.Context(), principal, &buf); err != nil {
		slog.Error("ExportRequests service error", "error", err)
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("leave-requests-%s.xlsx", time.Now().Format("20060102"))
	if err := response.File(w, xlsxContentType, filename, &buf); err != nil {
		slog.Error("ExportRequests write error", "error", err)
	}
}

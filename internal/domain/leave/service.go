package leave

import (
	"context"
	"io"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/user"
)

type LeaveService interface {
	// Profile
	CreateProfile(ctx context.Context, principal user.Principal, req CreateProfileRequest) (CreateProfileResponse, error)
	SetProfileActive(ctx context.Context, principal user.Principal, req SetProfileActiveRequest) (LeaveProfile, error)
	GetEmployeeLeaves(ctx context.Context, principal user.Principal, employeeID string) (EmployeeLeavesResponse, error)
	// Request
	ApplyLeave(ctx context.Context, principal user.Principal, req ApplyLeaveRequest) (ApplyLeaveResponse, error)
	UpdateLeaveStatus(ctx context.Context, principal user.Principal, req UpdateStatusRequest) (UpdateStatusResponse, error)
	// Settings
	AddHoliday(ctx context.Context, principal user.Principal, req AddHolidayRequest) (Holiday, error)
	ReplacePolicy(ctx context.Context, principal user.Principal, req ReplacePolicyRequest) (LeaveSettings, error)
	GetSettings(ctx context.Context, principal user.Principal) (LeaveSettings, error)
	// Reports
	CalendarView(ctx context.Context, principal user.Principal) ([]CalendarEvent, error)
	LeaveStats(ctx context.Context, principal user.Principal, now time.Time) (LeaveStatsResponse, error)
	AllLeaveRequests(ctx context.Context, principal user.Principal) ([]LeaveRequestView, error)
	ExportLeaveRequests(ctx context.Context, principal user.Principal, w io.Writer) error
}

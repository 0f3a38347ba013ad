package leave

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateProfileRequest struct {
	EmployeeID   string  `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
	DepartmentID *string `json:"departmentId,omitempty"`
}

func (r *CreateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employeeId",
			Message: "employeeId is required",
		})
	}
	if len(r.EmployeeName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "employeeName",
			Message: "employeeName must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CreateProfileResponse struct {
	Profile LeaveProfile `json:"profile"`
	Created bool         `json:"created"`
}

type SetProfileActiveRequest struct {
	EmployeeID string `json:"-"`
	IsActive   *bool  `json:"isActive"`
}

func (r *SetProfileActiveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employeeId",
			Message: "employeeId is required",
		})
	}
	if r.IsActive == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "isActive",
			Message: "isActive is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// MaxLeaveRangeDays bounds a single application, counted inclusively.
const MaxLeaveRangeDays = 366

type ApplyLeaveRequest struct {
	EmployeeID         string `json:"-"`
	LeaveType          string `json:"leaveType"`
	StartDate          string `json:"startDate"`
	EndDate            string `json:"endDate"`
	Reason             string `json:"reason"`
	Attachment         string `json:"attachment,omitempty"`
	HalfDay            bool   `json:"halfDay"`
	ContactDuringLeave string `json:"contactDuringLeave,omitempty"`
	IdempotencyKey     string `json:"-"`
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employeeId",
			Message: "employeeId is required",
		})
	}

	if _, err := ParseLeaveType(r.LeaveType); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "leaveType",
			Message: "leaveType must be one of Casual, Sick, Paid",
		})
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "startDate",
			Message: "startDate must be in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "endDate",
			Message: "endDate must be in YYYY-MM-DD format",
		})
	}
	if startOK && endOK {
		switch {
		case end.Before(start):
			errs = append(errs, validator.ValidationError{
				Field:   "endDate",
				Message: "endDate must not be before startDate",
			})
		case end.Sub(start) >= MaxLeaveRangeDays*24*time.Hour:
			errs = append(errs, validator.ValidationError{
				Field:   "endDate",
				Message: fmt.Sprintf("leave range must not exceed %d days", MaxLeaveRangeDays),
			})
		}
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Dates returns the parsed start and end dates. Call after Validate.
func (r *ApplyLeaveRequest) Dates() (time.Time, time.Time) {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return start, end
}

type ApplyLeaveResponse struct {
	LeaveID   string          `json:"leaveId"`
	TotalDays decimal.Decimal `json:"days"`
}

type UpdateStatusRequest struct {
	EmployeeID   string `json:"-"`
	LeaveID      string `json:"-"`
	Status       string `json:"status"`
	AdminComment string `json:"adminComment"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employeeId",
			Message: "employeeId is required",
		})
	}
	if validator.IsEmpty(r.LeaveID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leaveId",
			Message: "leaveId is required",
		})
	}
	if _, err := ParseLeaveStatus(r.Status); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of Pending, Approved, Rejected, Cancelled",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateStatusResponse struct {
	Status  LeaveStatus `json:"status"`
	Changed bool        `json:"changed"`
}

type AddHolidayRequest struct {
	HolidayName string `json:"holidayName"`
	HolidayDate string `json:"holidayDate"`
	HolidayType string `json:"holidayType"`
	IsOptional  bool   `json:"isOptional"`
}

func (r *AddHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.HolidayName) {
		errs = append(errs, validator.ValidationError{
			Field:   "holidayName",
			Message: "holidayName is required",
		})
	}
	if _, ok := validator.IsValidDate(r.HolidayDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "holidayDate",
			Message: "holidayDate must be in YYYY-MM-DD format",
		})
	}
	if !validator.IsInSlice(r.HolidayType, []string{string(HolidayTypeNational), string(HolidayTypeCompany)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "holidayType",
			Message: "holidayType must be one of National, Company",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ReplacePolicyRequest struct {
	Policies []LeavePolicy `json:"policies"`
}

type EmployeeLeavesResponse struct {
	Leaves   []LeaveRequest `json:"leaves"`
	Balance  LeaveBalance   `json:"balance"`
	Holidays []Holiday      `json:"holidays"`
}

type CalendarEvent struct {
	Title      string      `json:"title"`
	Start      time.Time   `json:"start"`
	End        time.Time   `json:"end"`
	AllDay     bool        `json:"allDay"`
	Status     LeaveStatus `json:"status"`
	EmployeeID string      `json:"employeeId"`
}

type LeaveStatsResponse struct {
	TotalRequests int `json:"totalRequests"`
	Pending       int `json:"pending"`
	Approved      int `json:"approved"`
	Rejected      int `json:"rejected"`
	OnLeaveToday  int `json:"onLeaveToday"`
}

// LeaveRequestView is a request annotated with its owning profile.
type LeaveRequestView struct {
	LeaveRequest
	EmployeeName   string `json:"employeeName"`
	EmployeeID     string `json:"employeeId"`
	LeaveProfileID string `json:"leaveProfileId"`
}

package leave

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Day counts and balances go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// LeaveType is the category a request is charged against.
type LeaveType string

const (
	LeaveTypeCasual LeaveType = "Casual"
	LeaveTypeSick   LeaveType = "Sick"
	LeaveTypePaid   LeaveType = "Paid"
)

// LeaveTypes lists every supported leave type in display order.
var LeaveTypes = []LeaveType{LeaveTypeCasual, LeaveTypeSick, LeaveTypePaid}

// ParseLeaveType converts a raw string into a LeaveType.
func ParseLeaveType(s string) (LeaveType, error) {
	for _, t := range LeaveTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLeaveType, s)
}

type LeaveStatus string

const (
	LeaveStatusPending   LeaveStatus = "Pending"
	LeaveStatusApproved  LeaveStatus = "Approved"
	LeaveStatusRejected  LeaveStatus = "Rejected"
	LeaveStatusCancelled LeaveStatus = "Cancelled"
)

// ParseLeaveStatus converts a raw string into a LeaveStatus.
func ParseLeaveStatus(s string) (LeaveStatus, error) {
	switch LeaveStatus(s) {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected, LeaveStatusCancelled:
		return LeaveStatus(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLeaveStatus, s)
}

// BlocksOverlap reports whether a request in this status reserves its dates.
func (s LeaveStatus) BlocksOverlap() bool {
	return s == LeaveStatusPending || s == LeaveStatusApproved
}

type HolidayType string

const (
	HolidayTypeNational HolidayType = "National"
	HolidayTypeCompany  HolidayType = "Company"
)

// TypeBalance holds the remaining days per leave type.
type TypeBalance struct {
	Casual decimal.Decimal `json:"Casual"`
	Sick   decimal.Decimal `json:"Sick"`
	Paid   decimal.Decimal `json:"Paid"`
}

// Get returns the remaining days for t.
func (b TypeBalance) Get(t LeaveType) decimal.Decimal {
	switch t {
	case LeaveTypeCasual:
		return b.Casual
	case LeaveTypeSick:
		return b.Sick
	case LeaveTypePaid:
		return b.Paid
	}
	return decimal.Zero
}

// Add adjusts the remaining days for t by delta.
func (b *TypeBalance) Add(t LeaveType, delta decimal.Decimal) {
	switch t {
	case LeaveTypeCasual:
		b.Casual = b.Casual.Add(delta)
	case LeaveTypeSick:
		b.Sick = b.Sick.Add(delta)
	case LeaveTypePaid:
		b.Paid = b.Paid.Add(delta)
	}
}

type LeaveBalance struct {
	TotalLeaves          decimal.Decimal `json:"totalLeaves"`
	UsedLeaves           decimal.Decimal `json:"usedLeaves"`
	RemainingLeaves      decimal.Decimal `json:"remainingLeaves"`
	LeaveTypeWiseBalance TypeBalance     `json:"leaveTypeWiseBalance"`
}

// DefaultLeaveBalance is the policy applied to every new profile: 30 days in
// total, 10 per leave type.
func DefaultLeaveBalance() LeaveBalance {
	ten := decimal.NewFromInt(10)
	return LeaveBalance{
		TotalLeaves:     decimal.NewFromInt(30),
		UsedLeaves:      decimal.Zero,
		RemainingLeaves: decimal.NewFromInt(30),
		LeaveTypeWiseBalance: TypeBalance{
			Casual: ten,
			Sick:   ten,
			Paid:   ten,
		},
	}
}

// CheckConservation verifies used + remaining == total.
func (b LeaveBalance) CheckConservation() error {
	if !b.UsedLeaves.Add(b.RemainingLeaves).Equal(b.TotalLeaves) {
		return fmt.Errorf("%w: used %s + remaining %s != total %s", ErrBalanceNotConserved,
			b.UsedLeaves.String(), b.RemainingLeaves.String(), b.TotalLeaves.String())
	}
	return nil
}

// LeaveRequest is embedded in, and owned by, a LeaveProfile.
type LeaveRequest struct {
	LeaveID            string          `json:"leaveId"`
	LeaveType          LeaveType       `json:"leaveType"`
	StartDate          time.Time       `json:"startDate"`
	EndDate            time.Time       `json:"endDate"`
	TotalDays          decimal.Decimal `json:"totalDays"`
	Reason             string          `json:"reason"`
	ContactDuringLeave string          `json:"contactDuringLeave,omitempty"`
	Attachment         string          `json:"attachment,omitempty"`
	HalfDay            bool            `json:"halfDay"`
	Status             LeaveStatus     `json:"status"`
	AppliedAt          time.Time       `json:"appliedAt"`
	ApprovedBy         *string         `json:"approvedBy,omitempty"`
	ApprovedAt         *time.Time      `json:"approvedAt,omitempty"`
	AdminComment       string          `json:"adminComment"`
	IdempotencyKey     string          `json:"idempotencyKey,omitempty"`
}

// Overlaps reports whether the inclusive range [start, end] intersects the
// request's range.
func (r LeaveRequest) Overlaps(start, end time.Time) bool {
	return !start.After(r.EndDate) && !end.Before(r.StartDate)
}

type AuditEntry struct {
	Action      string    `json:"action"`
	PerformedBy string    `json:"performedBy"`
	PerformedAt time.Time `json:"performedAt"`
}

// LeaveProfile is the per-employee aggregate and the unit of consistency:
// every mutation loads, changes and saves the whole profile atomically.
type LeaveProfile struct {
	ID            string         `json:"id"`
	EmployeeID    string         `json:"employeeId"`
	EmployeeName  string         `json:"employeeName"`
	DepartmentID  *string        `json:"departmentId,omitempty"`
	LeaveRequests []LeaveRequest `json:"leaveRequests"`
	LeaveBalance  LeaveBalance   `json:"leaveBalance"`
	AuditLog      []AuditEntry   `json:"auditLog"`
	IsActive      bool           `json:"isActive"`
	CreatedBy     *string        `json:"createdBy,omitempty"`
	UpdatedBy     *string        `json:"updatedBy,omitempty"`
	Version       int64          `json:"version"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// FindRequest returns the index of the request with leaveID, or -1.
func (p *LeaveProfile) FindRequest(leaveID string) int {
	for i := range p.LeaveRequests {
		if p.LeaveRequests[i].LeaveID == leaveID {
			return i
		}
	}
	return -1
}

// FindByIdempotencyKey returns the index of the request created with key, or -1.
func (p *LeaveProfile) FindByIdempotencyKey(key string) int {
	if key == "" {
		return -1
	}
	for i := range p.LeaveRequests {
		if p.LeaveRequests[i].IdempotencyKey == key {
			return i
		}
	}
	return -1
}

func (p *LeaveProfile) Audit(action, performedBy string, at time.Time) {
	p.AuditLog = append(p.AuditLog, AuditEntry{
		Action:      action,
		PerformedBy: performedBy,
		PerformedAt: at,
	})
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (p LeaveProfile) Clone() LeaveProfile {
	c := p
	c.LeaveRequests = make([]LeaveRequest, len(p.LeaveRequests))
	for i, r := range p.LeaveRequests {
		if r.ApprovedBy != nil {
			v := *r.ApprovedBy
			r.ApprovedBy = &v
		}
		if r.ApprovedAt != nil {
			v := *r.ApprovedAt
			r.ApprovedAt = &v
		}
		c.LeaveRequests[i] = r
	}
	c.AuditLog = append([]AuditEntry{}, p.AuditLog...)
	if p.DepartmentID != nil {
		v := *p.DepartmentID
		c.DepartmentID = &v
	}
	if p.CreatedBy != nil {
		v := *p.CreatedBy
		c.CreatedBy = &v
	}
	if p.UpdatedBy != nil {
		v := *p.UpdatedBy
		c.UpdatedBy = &v
	}
	return c
}

// LeavePolicy is the per-type policy record. Stored as given; nothing in the
// engine enforces it yet.
type LeavePolicy struct {
	LeaveType           LeaveType `json:"leaveType"`
	MaxLeavesPerYear    int       `json:"maxLeavesPerYear"`
	CarryForwardAllowed bool      `json:"carryForwardAllowed"`
	CarryForwardLimit   int       `json:"carryForwardLimit"`
	RequiresApproval    bool      `json:"requiresApproval"`
	RequiresProof       bool      `json:"requiresProof"`
}

type Holiday struct {
	HolidayID   string      `json:"holidayId"`
	HolidayName string      `json:"holidayName"`
	HolidayDate time.Time   `json:"holidayDate"`
	HolidayType HolidayType `json:"holidayType"`
	IsOptional  bool        `json:"isOptional"`
}

// LeaveSettings is the process-wide singleton holding policy and the holiday
// calendar.
type LeaveSettings struct {
	LeavePolicy []LeavePolicy `json:"leavePolicy"`
	Holidays    []Holiday     `json:"holidays"`
	Version     int64         `json:"version"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (s LeaveSettings) Clone() LeaveSettings {
	c := s
	c.LeavePolicy = append([]LeavePolicy{}, s.LeavePolicy...)
	c.Holidays = append([]Holiday{}, s.Holidays...)
	return c
}

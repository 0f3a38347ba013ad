package mongodb

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Records mirror the domain types with bson tags. Day amounts are stored as
// Decimal128 so half days survive the round trip exactly.

type leaveRequestRecord struct {
	LeaveID            string               `bson:"leaveId"`
	LeaveType          string               `bson:"leaveType"`
	StartDate          time.Time            `bson:"startDate"`
	EndDate            time.Time            `bson:"endDate"`
	TotalDays          primitive.Decimal128 `bson:"totalDays"`
	Reason             string               `bson:"reason"`
	ContactDuringLeave string               `bson:"contactDuringLeave,omitempty"`
	Attachment         string               `bson:"attachment,omitempty"`
	HalfDay            bool                 `bson:"halfDay"`
	Status             string               `bson:"status"`
	AppliedAt          time.Time            `bson:"appliedAt"`
	ApprovedBy         *string              `bson:"approvedBy,omitempty"`
	ApprovedAt         *time.Time           `bson:"approvedAt,omitempty"`
	AdminComment       string               `bson:"adminComment"`
	IdempotencyKey     string               `bson:"idempotencyKey,omitempty"`
}

type typeBalanceRecord struct {
	Casual primitive.Decimal128 `bson:"Casual"`
	Sick   primitive.Decimal128 `bson:"Sick"`
	Paid   primitive.Decimal128 `bson:"Paid"`
}

type leaveBalanceRecord struct {
	TotalLeaves          primitive.Decimal128 `bson:"totalLeaves"`
	UsedLeaves           primitive.Decimal128 `bson:"usedLeaves"`
	RemainingLeaves      primitive.Decimal128 `bson:"remainingLeaves"`
	LeaveTypeWiseBalance typeBalanceRecord    `bson:"leaveTypeWiseBalance"`
}

type auditRecord struct {
	Action      string    `bson:"action"`
	PerformedBy string    `bson:"performedBy"`
	PerformedAt time.Time `bson:"performedAt"`
}

type leaveProfileRecord struct {
	ID            string               `bson:"_id"`
	EmployeeID    string               `bson:"employeeId"`
	EmployeeName  string               `bson:"employeeName"`
	DepartmentID  *string              `bson:"departmentId,omitempty"`
	LeaveRequests []leaveRequestRecord `bson:"leaveRequests"`
	LeaveBalance  leaveBalanceRecord   `bson:"leaveBalance"`
	AuditLog      []auditRecord        `bson:"auditLog"`
	IsActive      bool                 `bson:"isActive"`
	CreatedBy     *string              `bson:"createdBy,omitempty"`
	UpdatedBy     *string              `bson:"updatedBy,omitempty"`
	Version       int64                `bson:"version"`
	CreatedAt     time.Time            `bson:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

type holidayRecord struct {
	HolidayID   string    `bson:"holidayId"`
	HolidayName string    `bson:"holidayName"`
	HolidayDate time.Time `bson:"holidayDate"`
	HolidayType string    `bson:"holidayType"`
	IsOptional  bool      `bson:"isOptional"`
}

type leavePolicyRecord struct {
	LeaveType           string `bson:"leaveType"`
	MaxLeavesPerYear    int    `bson:"maxLeavesPerYear"`
	CarryForwardAllowed bool   `bson:"carryForwardAllowed"`
	CarryForwardLimit   int    `bson:"carryForwardLimit"`
	RequiresApproval    bool   `bson:"requiresApproval"`
	RequiresProof       bool   `bson:"requiresProof"`
}

type leaveSettingsRecord struct {
	ID          string              `bson:"_id"`
	LeavePolicy []leavePolicyRecord `bson:"leavePolicy"`
	Holidays    []holidayRecord     `bson:"holidays"`
	Version     int64               `bson:"version"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode decimal %s: %w", d.String(), err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode decimal %s: %w", v.String(), err)
	}
	return d, nil
}

// decimalCodec collects the first conversion error so record mapping reads
// straight through.
type decimalCodec struct {
	err error
}

func (c *decimalCodec) encode(d decimal.Decimal) primitive.Decimal128 {
	if c.err != nil {
		return primitive.Decimal128{}
	}
	v, err := toDecimal128(d)
	c.err = err
	return v
}

func (c *decimalCodec) decode(v primitive.Decimal128) decimal.Decimal {
	if c.err != nil {
		return decimal.Zero
	}
	d, err := fromDecimal128(v)
	c.err = err
	return d
}

func profileToRecord(p leave.LeaveProfile) (leaveProfileRecord, error) {
	var c decimalCodec

	requests := make([]leaveRequestRecord, 0, len(p.LeaveRequests))
	for _, r := range p.LeaveRequests {
		requests = append(requests, leaveRequestRecord{
			LeaveID:            r.LeaveID,
			LeaveType:          string(r.LeaveType),
			StartDate:          r.StartDate,
			EndDate:            r.EndDate,
			TotalDays:          c.encode(r.TotalDays),
			Reason:             r.Reason,
			ContactDuringLeave: r.ContactDuringLeave,
			Attachment:         r.Attachment,
			HalfDay:            r.HalfDay,
			Status:             string(r.Status),
			AppliedAt:          r.AppliedAt,
			ApprovedBy:         r.ApprovedBy,
			ApprovedAt:         r.ApprovedAt,
			AdminComment:       r.AdminComment,
			IdempotencyKey:     r.IdempotencyKey,
		})
	}

	audit := make([]auditRecord, 0, len(p.AuditLog))
	for _, a := range p.AuditLog {
		audit = append(audit, auditRecord(a))
	}

	b := p.LeaveBalance
	record := leaveProfileRecord{
		ID:            p.ID,
		EmployeeID:    p.EmployeeID,
		EmployeeName:  p.EmployeeName,
		DepartmentID:  p.DepartmentID,
		LeaveRequests: requests,
		LeaveBalance: leaveBalanceRecord{
			TotalLeaves:     c.encode(b.TotalLeaves),
			UsedLeaves:      c.encode(b.UsedLeaves),
			RemainingLeaves: c.encode(b.RemainingLeaves),
			LeaveTypeWiseBalance: typeBalanceRecord{
				Casual: c.encode(b.LeaveTypeWiseBalance.Casual),
				Sick:   c.encode(b.LeaveTypeWiseBalance.Sick),
				Paid:   c.encode(b.LeaveTypeWiseBalance.Paid),
			},
		},
		AuditLog:  audit,
		IsActive:  p.IsActive,
		CreatedBy: p.CreatedBy,
		UpdatedBy: p.UpdatedBy,
		Version:   p.Version,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	return record, c.err
}

func recordToProfile(r leaveProfileRecord) (leave.LeaveProfile, error) {
	var c decimalCodec

	requests := make([]leave.LeaveRequest, 0, len(r.LeaveRequests))
	for _, lr := range r.LeaveRequests {
		requests = append(requests, leave.LeaveRequest{
			LeaveID:            lr.LeaveID,
			LeaveType:          leave.LeaveType(lr.LeaveType),
			StartDate:          lr.StartDate.UTC(),
			EndDate:            lr.EndDate.UTC(),
			TotalDays:          c.decode(lr.TotalDays),
			Reason:             lr.Reason,
			ContactDuringLeave: lr.ContactDuringLeave,
			Attachment:         lr.Attachment,
			HalfDay:            lr.HalfDay,
			Status:             leave.LeaveStatus(lr.Status),
			AppliedAt:          lr.AppliedAt,
			ApprovedBy:         lr.ApprovedBy,
			ApprovedAt:         lr.ApprovedAt,
			AdminComment:       lr.AdminComment,
			IdempotencyKey:     lr.IdempotencyKey,
		})
	}

	audit := make([]leave.AuditEntry, 0, len(r.AuditLog))
	for _, a := range r.AuditLog {
		audit = append(audit, leave.AuditEntry(a))
	}

	b := r.LeaveBalance
	profile := leave.LeaveProfile{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		DepartmentID:  r.DepartmentID,
		LeaveRequests: requests,
		LeaveBalance: leave.LeaveBalance{
			TotalLeaves:     c.decode(b.TotalLeaves),
			UsedLeaves:      c.decode(b.UsedLeaves),
			RemainingLeaves: c.decode(b.RemainingLeaves),
			LeaveTypeWiseBalance: leave.TypeBalance{
				Casual: c.decode(b.LeaveTypeWiseBalance.Casual),
				Sick:   c.decode(b.LeaveTypeWiseBalance.Sick),
				Paid:   c.decode(b.LeaveTypeWiseBalance.Paid),
			},
		},
		AuditLog:  audit,
		IsActive:  r.IsActive,
		CreatedBy: r.CreatedBy,
		UpdatedBy: r.UpdatedBy,
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	return profile, c.err
}

func settingsToRecord(id string, s leave.LeaveSettings) leaveSettingsRecord {
	policies := make([]leavePolicyRecord, 0, len(s.LeavePolicy))
	for _, p := range s.LeavePolicy {
		policies = append(policies, leavePolicyRecord{
			LeaveType:           string(p.LeaveType),
			MaxLeavesPerYear:    p.MaxLeavesPerYear,
			CarryForwardAllowed: p.CarryForwardAllowed,
			CarryForwardLimit:   p.CarryForwardLimit,
			RequiresApproval:    p.RequiresApproval,
			RequiresProof:       p.RequiresProof,
		})
	}

	holidays := make([]holidayRecord, 0, len(s.Holidays))
	for _, h := range s.Holidays {
		holidays = append(holidays, holidayRecord{
			HolidayID:   h.HolidayID,
			HolidayName: h.HolidayName,
			HolidayDate: h.HolidayDate,
			HolidayType: string(h.HolidayType),
			IsOptional:  h.IsOptional,
		})
	}

	return leaveSettingsRecord{
		ID:          id,
		LeavePolicy: policies,
		Holidays:    holidays,
		Version:     s.Version,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func recordToSettings(r leaveSettingsRecord) leave.LeaveSettings {
	policies := make([]leave.LeavePolicy, 0, len(r.LeavePolicy))
	for _, p := range r.LeavePolicy {
		policies = append(policies, leave.LeavePolicy{
			LeaveType:           leave.LeaveType(p.LeaveType),
			MaxLeavesPerYear:    p.MaxLeavesPerYear,
			CarryForwardAllowed: p.CarryForwardAllowed,
			CarryForwardLimit:   p.CarryForwardLimit,
			RequiresApproval:    p.RequiresApproval,
			RequiresProof:       p.RequiresProof,
		})
	}

	holidays := make([]leave.Holiday, 0, len(r.Holidays))
	for _, h := range r.Holidays {
		holidays = append(holidays, leave.Holiday{
			HolidayID:   h.HolidayID,
			HolidayName: h.HolidayName,
			HolidayDate: h.HolidayDate.UTC(),
			HolidayType: leave.HolidayType(h.HolidayType),
			IsOptional:  h.IsOptional,
		})
	}

	return leave.LeaveSettings{
		LeavePolicy: policies,
		Holidays:    holidays,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

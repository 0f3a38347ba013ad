package leave

import (
	"log/slog"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/shopspring/decimal"
)

type balanceEffect int

const (
	effectNone balanceEffect = iota
	effectDebit
	effectCredit
)

// transitionEffect decides how moving a request from one status to another
// changes the balance. Only approval consumes days; leaving Approved for
// Rejected or Cancelled gives them back.
func transitionEffect(from, to leave.LeaveStatus) balanceEffect {
	switch {
	case to == leave.LeaveStatusApproved && from != leave.LeaveStatusApproved:
		return effectDebit
	case from == leave.LeaveStatusApproved &&
		(to == leave.LeaveStatusRejected || to == leave.LeaveStatusCancelled):
		return effectCredit
	default:
		return effectNone
	}
}

// Debit charges days against the balance for leaveType.
func Debit(balance *leave.LeaveBalance, leaveType leave.LeaveType, days decimal.Decimal) {
	balance.UsedLeaves = balance.UsedLeaves.Add(days)
	balance.RemainingLeaves = balance.RemainingLeaves.Sub(days)
	balance.LeaveTypeWiseBalance.Add(leaveType, days.Neg())

	// Sufficiency is only checked when the request is applied for, so an
	// approval can still overdraw the type.
	if remaining := balance.LeaveTypeWiseBalance.Get(leaveType); remaining.IsNegative() {
		slog.Warn("leave type balance overdrawn by approval",
			"leave_type", leaveType,
			"remaining", remaining.String(),
			"debited", days.String(),
		)
	}
}

// Credit returns previously debited days to the balance for leaveType.
func Credit(balance *leave.LeaveBalance, leaveType leave.LeaveType, days decimal.Decimal) {
	balance.UsedLeaves = balance.UsedLeaves.Sub(days)
	balance.RemainingLeaves = balance.RemainingLeaves.Add(days)
	balance.LeaveTypeWiseBalance.Add(leaveType, days)
}

// applyTransition moves the request's days through the ledger for a status change.
func applyTransition(balance *leave.LeaveBalance, request leave.LeaveRequest, from, to leave.LeaveStatus) {
	switch transitionEffect(from, to) {
	case effectDebit:
		Debit(balance, request.LeaveType, request.TotalDays)
	case effectCredit:
		Credit(balance, request.LeaveType, request.TotalDays)
	}
}

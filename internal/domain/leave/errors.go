package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrProfileNotFound          = errors.New("leave profile not found")
	ErrProfileInactive          = errors.New("leave profile is inactive")
	ErrLeaveRequestNotFound     = errors.New("leave request not found")
	ErrInvalidRange             = errors.New("selected dates are holidays or weekends")
	ErrInsufficientBalance      = errors.New("insufficient leave balance")
	ErrOverlapConflict          = errors.New("a leave request already exists for this period")
	ErrRejectionCommentRequired = errors.New("comment is mandatory for rejection")
	ErrInvalidTransition        = errors.New("leave request cannot be moved back to pending")
	ErrUnknownLeaveType         = errors.New("unknown leave type")
	ErrUnknownLeaveStatus       = errors.New("unknown leave status")
	ErrConcurrentModification   = errors.New("leave profile was modified concurrently")
	ErrBalanceNotConserved      = errors.New("used and remaining leaves do not add up to total")
)

// InsufficientBalanceError carries the figures behind ErrInsufficientBalance.
type InsufficientBalanceError struct {
	LeaveType LeaveType
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s leave balance. Available: %s, Requested: %s",
		e.LeaveType, e.Available.String(), e.Requested.String())
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

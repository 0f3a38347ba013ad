package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/leave-engine/internal/domain/auth"
	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		Error(w, http.StatusUnprocessableEntity, "Validation failed", validationErrs.ToMap())
		return
	}

	var balanceErr *leave.InsufficientBalanceError
	if errors.As(err, &balanceErr) {
		BadRequest(w, balanceErr.Error(), map[string]string{
			"leaveType": string(balanceErr.LeaveType),
			"available": balanceErr.Available.String(),
			"requested": balanceErr.Requested.String(),
		})
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrInvalidClaims):
		Unauthorized(w, err.Error())

	// Access errors
	case errors.Is(err, user.ErrAdminPrivilegeRequired),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrNotResourceOwner):
		Forbidden(w, err.Error())

	// Leave domain errors
	case errors.Is(err, leave.ErrProfileNotFound):
		Error(w, http.StatusNotFound, "Leave profile not found", nil)
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		Error(w, http.StatusNotFound, "Leave request not found", nil)
	case errors.Is(err, leave.ErrInvalidRange):
		BadRequest(w, "Selected dates are holidays or weekends", nil)
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, "Insufficient leave balance", nil)
	case errors.Is(err, leave.ErrRejectionCommentRequired):
		Error(w, http.StatusUnprocessableEntity, "Validation failed", map[string]string{"adminComment": "Comment is mandatory for rejection"})
	case errors.Is(err, leave.ErrUnknownLeaveType),
		errors.Is(err, leave.ErrUnknownLeaveStatus):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrOverlapConflict):
		Error(w, http.StatusConflict, "Leave request already exists for this period", nil)
	case errors.Is(err, leave.ErrProfileInactive):
		Error(w, http.StatusConflict, "Leave profile is inactive", nil)
	case errors.Is(err, leave.ErrInvalidTransition):
		Error(w, http.StatusConflict, "Leave request cannot be moved back to pending", nil)
	case errors.Is(err, leave.ErrConcurrentModification):
		Error(w, http.StatusConflict, "Leave profile was modified concurrently, please retry", nil)

	// Default
	default:
		Error(w, http.StatusInternalServerError, "An unexpected error occurred", nil)
	}
}

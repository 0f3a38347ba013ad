package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/validator"
	"github.com/google/uuid"
)

var (
	// Returned from inside a profile update to abort the write when the
	// outcome is already recorded.
	errIdempotentReplay = errors.New("leave request already applied")
	errStatusUnchanged  = errors.New("status unchanged")
)

// RequestService runs the leave request workflow: application, status
// transitions and the balance effects tied to them.
type RequestService struct {
	leave.ProfileRepository
	leave.SettingsRepository
	now func() time.Time
}

func NewRequestService(profileRepository leave.ProfileRepository, settingsRepository leave.SettingsRepository) *RequestService {
	return &RequestService{
		ProfileRepository:  profileRepository,
		SettingsRepository: settingsRepository,
		now:                time.Now,
	}
}

// Apply records a new Pending request. Guards run in order: profile exists,
// days resolve to something, balance covers them, no overlap with a Pending
// or Approved request.
func (r *RequestService) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.ApplyLeaveResponse, error) {
	leaveType, err := leave.ParseLeaveType(req.LeaveType)
	if err != nil {
		return leave.ApplyLeaveResponse{}, err
	}
	startDate, endDate := req.Dates()

	settings, err := r.SettingsRepository.Get(ctx)
	if err != nil {
		return leave.ApplyLeaveResponse{}, fmt.Errorf("failed to get leave settings: %w", err)
	}
	holidays := NewHolidaySet(settings.Holidays)

	leaveID, err := newID()
	if err != nil {
		return leave.ApplyLeaveResponse{}, err
	}

	var result leave.ApplyLeaveResponse
	_, err = r.ProfileRepository.Update(ctx, req.EmployeeID, func(profile *leave.LeaveProfile) error {
		if !profile.IsActive {
			return leave.ErrProfileInactive
		}

		if i := profile.FindByIdempotencyKey(req.IdempotencyKey); i >= 0 {
			existing := profile.LeaveRequests[i]
			result = leave.ApplyLeaveResponse{LeaveID: existing.LeaveID, TotalDays: existing.TotalDays}
			return errIdempotentReplay
		}

		totalDays := ResolveLeaveDays(startDate, endDate, req.HalfDay, holidays)
		if totalDays.IsZero() {
			return leave.ErrInvalidRange
		}

		available := profile.LeaveBalance.LeaveTypeWiseBalance.Get(leaveType)
		if available.LessThan(totalDays) {
			return &leave.InsufficientBalanceError{
				LeaveType: leaveType,
				Available: available,
				Requested: totalDays,
			}
		}

		for _, existing := range profile.LeaveRequests {
			if existing.Status.BlocksOverlap() && existing.Overlaps(startDate, endDate) {
				return leave.ErrOverlapConflict
			}
		}

		now := r.now()
		profile.LeaveRequests = append(profile.LeaveRequests, leave.LeaveRequest{
			LeaveID:            leaveID,
			LeaveType:          leaveType,
			StartDate:          startDate,
			EndDate:            endDate,
			TotalDays:          totalDays,
			Reason:             req.Reason,
			ContactDuringLeave: req.ContactDuringLeave,
			Attachment:         req.Attachment,
			HalfDay:            req.HalfDay,
			Status:             leave.LeaveStatusPending,
			AppliedAt:          now,
			IdempotencyKey:     req.IdempotencyKey,
		})
		profile.Audit("Leave Applied", req.EmployeeID, now)

		result = leave.ApplyLeaveResponse{LeaveID: leaveID, TotalDays: totalDays}
		return nil
	})
	if err != nil && !errors.Is(err, errIdempotentReplay) {
		return leave.ApplyLeaveResponse{}, err
	}

	return result, nil
}

// UpdateStatus moves a request to a new status on behalf of adminID and
// applies the matching debit or credit in the same profile write.
func (r *RequestService) UpdateStatus(ctx context.Context, adminID string, req leave.UpdateStatusRequest) (leave.UpdateStatusResponse, error) {
	status, err := leave.ParseLeaveStatus(req.Status)
	if err != nil {
		return leave.UpdateStatusResponse{}, err
	}

	_, err = r.ProfileRepository.Update(ctx, req.EmployeeID, func(profile *leave.LeaveProfile) error {
		i := profile.FindRequest(req.LeaveID)
		if i < 0 {
			return leave.ErrLeaveRequestNotFound
		}
		request := &profile.LeaveRequests[i]

		if request.Status == status {
			return errStatusUnchanged
		}
		if status == leave.LeaveStatusRejected && validator.IsEmpty(req.AdminComment) {
			return leave.ErrRejectionCommentRequired
		}
		if status == leave.LeaveStatusPending {
			return leave.ErrInvalidTransition
		}

		oldStatus := request.Status
		now := r.now()
		approvedBy := adminID

		request.Status = status
		request.AdminComment = ""
		if status == leave.LeaveStatusRejected {
			request.AdminComment = req.AdminComment
		}
		request.ApprovedBy = &approvedBy
		request.ApprovedAt = &now

		applyTransition(&profile.LeaveBalance, *request, oldStatus, status)
		if err := profile.LeaveBalance.CheckConservation(); err != nil {
			return err
		}

		profile.UpdatedBy = &approvedBy
		profile.Audit(fmt.Sprintf("Leave %s", status), adminID, now)
		return nil
	})
	if errors.Is(err, errStatusUnchanged) {
		return leave.UpdateStatusResponse{Status: status, Changed: false}, nil
	}
	if err != nil {
		return leave.UpdateStatusResponse{}, err
	}

	return leave.UpdateStatusResponse{Status: status, Changed: true}, nil
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

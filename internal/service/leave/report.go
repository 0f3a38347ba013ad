package leave

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/validator"
	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Leave Requests"

var exportHeader = []interface{}{
	"Leave ID", "Employee ID", "Employee Name", "Leave Type",
	"Start Date", "End Date", "Total Days", "Half Day", "Status",
	"Applied At", "Approved By", "Approved At", "Admin Comment", "Reason",
}

// ReportService builds the dashboard views. Every call rescans all profiles;
// results are not isolated from concurrent writes.
type ReportService struct {
	leave.ProfileRepository
}

func NewReportService(profileRepository leave.ProfileRepository) *ReportService {
	return &ReportService{ProfileRepository: profileRepository}
}

// CalendarView lists every Approved request as an all-day event.
func (s *ReportService) CalendarView(ctx context.Context) ([]leave.CalendarEvent, error) {
	profiles, err := s.ProfileRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave profiles: %w", err)
	}

	events := []leave.CalendarEvent{}
	for _, p := range profiles {
		for _, l := range p.LeaveRequests {
			if l.Status != leave.LeaveStatusApproved {
				continue
			}
			events = append(events, leave.CalendarEvent{
				Title:      fmt.Sprintf("%s (%s)", p.EmployeeName, l.LeaveType),
				Start:      l.StartDate,
				End:        l.EndDate,
				AllDay:     true,
				Status:     leave.LeaveStatusApproved,
				EmployeeID: p.EmployeeID,
			})
		}
	}

	return events, nil
}

// Stats tallies requests by status and counts Approved requests covering now's
// calendar date.
func (s *ReportService) Stats(ctx context.Context, now time.Time) (leave.LeaveStatsResponse, error) {
	profiles, err := s.ProfileRepository.List(ctx)
	if err != nil {
		return leave.LeaveStatsResponse{}, fmt.Errorf("failed to list leave profiles: %w", err)
	}

	today := dateOf(now)
	var stats leave.LeaveStatsResponse
	for _, p := range profiles {
		for _, l := range p.LeaveRequests {
			stats.TotalRequests++
			switch l.Status {
			case leave.LeaveStatusPending:
				stats.Pending++
			case leave.LeaveStatusApproved:
				stats.Approved++
				if !today.Before(dateOf(l.StartDate)) && !today.After(dateOf(l.EndDate)) {
					stats.OnLeaveToday++
				}
			case leave.LeaveStatusRejected:
				stats.Rejected++
			}
		}
	}

	return stats, nil
}

// AllRequests flattens every request with its owner, newest application first.
func (s *ReportService) AllRequests(ctx context.Context) ([]leave.LeaveRequestView, error) {
	profiles, err := s.ProfileRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave profiles: %w", err)
	}

	views := []leave.LeaveRequestView{}
	for _, p := range profiles {
		for _, l := range p.LeaveRequests {
			views = append(views, leave.LeaveRequestView{
				LeaveRequest:   l,
				EmployeeName:   p.EmployeeName,
				EmployeeID:     p.EmployeeID,
				LeaveProfileID: p.ID,
			})
		}
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].AppliedAt.After(views[j].AppliedAt)
	})

	return views, nil
}

// Export writes AllRequests as an XLSX workbook.
func (s *ReportService) Export(ctx context.Context, w io.Writer) error {
	views, err := s.AllRequests(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return fmt.Errorf("failed to name export sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for i, v := range views {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			v.LeaveID,
			v.EmployeeID,
			v.EmployeeName,
			string(v.LeaveType),
			v.StartDate.Format(validator.DateLayout),
			v.EndDate.Format(validator.DateLayout),
			v.TotalDays.InexactFloat64(),
			v.HalfDay,
			string(v.Status),
			v.AppliedAt.Format(time.RFC3339),
			derefString(v.ApprovedBy),
			formatOptionalTime(v.ApprovedAt),
			v.AdminComment,
			v.Reason,
		}
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write export row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write export workbook: %w", err)
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

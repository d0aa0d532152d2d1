package divisionmanager

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/notification"
)

// Attendance and approvals are placeholder figures until those subsystems
// are built.
const (
	todayAttendancePlaceholder  = 92.5
	pendingApprovalsPlaceholder = 2
)

type ServiceAPI interface {
	Overview(actor authz.Actor) (*Overview, error)
	Stats(actor authz.Actor) (*Stats, error)
	Departments(actor authz.Actor) ([]DepartmentSummary, error)
	PendingApprovals(actor authz.Actor) (*PendingApprovals, error)
	SendNotification(actor authz.Actor, dto notification.SendNotificationDTO) (int, error)
}

// Notifier is the slice of the notification service the console needs.
type Notifier interface {
	Send(actor authz.Actor, dto notification.SendNotificationDTO) (int, error)
}

type Service struct {
	repo     RepositoryAPI
	notifier Notifier
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// requireDivision resolves the actor's division. Admins pass the role gate
// at the router, but the console is meaningless without a division to show.
func (s *Service) requireDivision(actor authz.Actor) (int64, error) {
	if actor.Role != authz.RoleDivisionManager && actor.Role != authz.RoleAdmin {
		return 0, internal.NewForbiddenError("only division managers can access this endpoint", internal.ErrCodeScopeDenied)
	}
	if actor.DivisionID == nil {
		return 0, internal.NewValidationError("no division assigned to this manager", internal.ErrCodeNoDivisionAssigned)
	}
	return *actor.DivisionID, nil
}

func (s *Service) Overview(actor authz.Actor) (*Overview, error) {
	divisionID, err := s.requireDivision(actor)
	if err != nil {
		return nil, err
	}

	info, err := s.repo.DivisionInfo(divisionID)
	if err != nil {
		return nil, err
	}

	deptCount, err := s.repo.CountDepartments(divisionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to count departments", err)
	}
	total, active, err := s.repo.CountEmployees(divisionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to count employees", err)
	}
	managers, err := s.repo.Managers(divisionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load managers", err)
	}

	return &Overview{
		DivisionInfo: *info,
		Statistics: Statistics{
			TotalDepartments:  deptCount,
			TotalEmployees:    total,
			ActiveEmployees:   active,
			InactiveEmployees: total - active,
			ManagersCount:     len(managers),
		},
		Managers: managers,
		Settings: map[string]interface{}{
			"allow_self_scheduling":         true,
			"require_approval_for_time_off": true,
			"notify_on_late_arrival":        true,
			"max_overtime_hours":            20,
			"shift_change_deadline_hours":   24,
			"attendance_report_frequency":   "weekly",
			"default_shift_start":           "08:00",
			"default_shift_end":             "16:00",
			"allow_shift_swaps":             true,
			"auto_approve_overtime":         false,
		},
		SystemStatus: map[string]string{
			"attendance_tracking": "active",
			"scheduling_system":   "active",
			"notification_system": "active",
			"report_generation":   "active",
		},
	}, nil
}

func (s *Service) Stats(actor authz.Actor) (*Stats, error) {
	divisionID, err := s.requireDivision(actor)
	if err != nil {
		return nil, err
	}

	info, err := s.repo.DivisionInfo(divisionID)
	if err != nil {
		return nil, err
	}

	deptCount, err := s.repo.CountDepartments(divisionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to count departments", err)
	}
	total, active, err := s.repo.CountEmployees(divisionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to count employees", err)
	}
	shifts, err := s.repo.CountActiveShifts()
	if err != nil {
		return nil, internal.NewInternalError("failed to count shifts", err)
	}

	return &Stats{
		Division: *info,
		Figures: StatFigures{
			TotalDepartments: deptCount,
			TotalEmployees:   total,
			ActiveEmployees:  active,
			TodayAttendance:  todayAttendancePlaceholder,
			ActiveShifts:     shifts,
			PendingApprovals: pendingApprovalsPlaceholder,
		},
	}, nil
}

func (s *Service) Departments(actor authz.Actor) ([]DepartmentSummary, error) {
	divisionID, err := s.requireDivision(actor)
	if err != nil {
		return nil, err
	}

	departments, err := s.repo.Departments(divisionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load departments", err)
	}
	return departments, nil
}

// PendingApprovals returns sample rows until the leave and overtime
// workflows are implemented.
func (s *Service) PendingApprovals(actor authz.Actor) (*PendingApprovals, error) {
	divisionID, err := s.requireDivision(actor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &PendingApprovals{
		DivisionID:   divisionID,
		TotalPending: pendingApprovalsPlaceholder,
		Approvals: []PendingApproval{
			{
				ID:             1,
				Type:           "leave",
				EmployeeName:   "John Doe",
				EmployeeID:     "EMP001",
				DepartmentID:   1,
				DepartmentName: "Production Line A",
				RequestDate:    now,
				Reason:         "Family vacation",
				Status:         "pending",
			},
			{
				ID:             2,
				Type:           "overtime",
				EmployeeName:   "Jane Smith",
				EmployeeID:     "EMP002",
				DepartmentID:   2,
				DepartmentName: "Production Line B",
				RequestDate:    now,
				Reason:         "Project deadline",
				Status:         "pending",
			},
		},
	}, nil
}

// SendNotification fans out through the notification service, which
// already confines a division manager's audience to their own division.
func (s *Service) SendNotification(actor authz.Actor, dto notification.SendNotificationDTO) (int, error) {
	if _, err := s.requireDivision(actor); err != nil {
		return 0, err
	}
	return s.notifier.Send(actor, dto)
}

package dashboard

import (
	"log/slog"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/authz"
)

// Placeholder figures until attendance records exist. Not authoritative.
const (
	attendanceAdmin             = 94.5
	attendanceDivisionManager   = 92.3
	attendanceDepartmentManager = 95.1
	attendanceEmployee          = 100.0

	pendingApprovalsPlaceholder = 3
)

type ServiceAPI interface {
	Stats(actor authz.Actor) (Stats, error)
	RecentActivity(actor authz.Actor, limit int) ([]Activity, error)
	DivisionOverview(actor authz.Actor) ([]DivisionSummary, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Stats returns counts sized to the actor's horizon: the whole plant for
// admins, their division or department for managers, themselves for
// everyone else.
func (s *Service) Stats(actor authz.Actor) (Stats, error) {
	stats := Stats{PendingApprovals: pendingApprovalsPlaceholder}

	activeShifts, err := s.repo.CountShifts()
	if err != nil {
		return stats, internal.NewInternalError("failed to count shifts", err)
	}
	stats.ActiveShifts = activeShifts

	switch actor.Role {
	case authz.RoleAdmin:
		stats.TodayAttendance = attendanceAdmin
		if stats.TotalDivisions, err = s.repo.CountDivisions(); err != nil {
			return stats, internal.NewInternalError("failed to count divisions", err)
		}
		if stats.TotalDepartments, err = s.repo.CountDepartments(nil); err != nil {
			return stats, internal.NewInternalError("failed to count departments", err)
		}
		if stats.TotalEmployees, err = s.repo.CountUsers(nil, nil); err != nil {
			return stats, internal.NewInternalError("failed to count users", err)
		}

	case authz.RoleDivisionManager:
		stats.TodayAttendance = attendanceDivisionManager
		stats.TotalDivisions = 1
		if stats.TotalDepartments, err = s.repo.CountDepartments(actor.DivisionID); err != nil {
			return stats, internal.NewInternalError("failed to count departments", err)
		}
		if stats.TotalEmployees, err = s.repo.CountUsers(actor.DivisionID, nil); err != nil {
			return stats, internal.NewInternalError("failed to count users", err)
		}

	case authz.RoleDepartmentManager:
		stats.TodayAttendance = attendanceDepartmentManager
		stats.TotalDivisions = 1
		stats.TotalDepartments = 1
		if stats.TotalEmployees, err = s.repo.CountUsers(nil, actor.DepartmentID); err != nil {
			return stats, internal.NewInternalError("failed to count users", err)
		}

	default:
		stats.TodayAttendance = attendanceEmployee
		stats.TotalEmployees = 1
	}

	return stats, nil
}

// RecentActivity maps the audit trail into the feed: admins see all
// entries, managers see recent logins, everyone else sees their own
// actions.
func (s *Service) RecentActivity(actor authz.Actor, limit int) ([]Activity, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var (
		rows []ActivityRow
		kind string
		err  error
	)
	switch actor.Role {
	case authz.RoleAdmin:
		kind = "audit"
		rows, err = s.repo.RecentEntries(limit)
	case authz.RoleDivisionManager, authz.RoleDepartmentManager:
		kind = "login"
		rows, err = s.repo.RecentLogins(limit)
	default:
		kind = "user_activity"
		rows, err = s.repo.RecentEntriesForUser(actor.ID, limit)
	}
	if err != nil {
		return nil, internal.NewInternalError("failed to load recent activity", err)
	}

	activities := make([]Activity, 0, len(rows))
	for _, row := range rows {
		name := row.UserName
		if name == "" {
			name = "System"
		}
		activities = append(activities, Activity{
			ID:        row.ID,
			Type:      kind,
			Action:    row.Action,
			Resource:  row.Resource,
			User:      name,
			Timestamp: row.CreatedAt,
			Details:   row.Details,
			IPAddress: row.IPAddress,
		})
	}
	return activities, nil
}

func (s *Service) DivisionOverview(actor authz.Actor) ([]DivisionSummary, error) {
	if actor.Role == authz.RoleAdmin {
		return s.overview(nil)
	}
	if actor.DivisionID == nil {
		return []DivisionSummary{}, nil
	}
	return s.overview(actor.DivisionID)
}

func (s *Service) overview(divisionID *int64) ([]DivisionSummary, error) {
	summaries, err := s.repo.DivisionOverview(divisionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to build division overview", err)
	}
	return summaries, nil
}

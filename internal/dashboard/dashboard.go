package dashboard

import (
	"encoding/json"
	"time"
)

// Stats is the headline widget payload. Attendance and approvals are
// placeholder figures until the attendance subsystem lands.
type Stats struct {
	TotalDivisions   int64   `json:"total_divisions"`
	TotalDepartments int64   `json:"total_departments"`
	TotalEmployees   int64   `json:"total_employees"`
	TodayAttendance  float64 `json:"today_attendance"`
	ActiveShifts     int64   `json:"active_shifts"`
	PendingApprovals int     `json:"pending_approvals"`
}

// Activity is one row of the recent-activity feed, derived from the audit
// trail.
type Activity struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Action    string          `json:"action"`
	Resource  string          `json:"resource,omitempty"`
	User      string          `json:"user"`
	Timestamp time.Time       `json:"timestamp"`
	Details   json.RawMessage `json:"details,omitempty"`
	IPAddress *string         `json:"ip,omitempty"`
}

// DivisionSummary is one card of the division overview.
type DivisionSummary struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	Color           string    `json:"color"`
	DepartmentCount int64     `json:"department_count"`
	EmployeeCount   int64     `json:"employee_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// ActivityRow joins an audit entry with the actor's display name.
type ActivityRow struct {
	ID        int64
	Action    string
	Resource  string
	UserName  string
	Details   json.RawMessage
	IPAddress *string
	CreatedAt time.Time
}

type RepositoryAPI interface {
	CountDivisions() (int64, error)
	CountDepartments(divisionID *int64) (int64, error)
	CountUsers(divisionID, departmentID *int64) (int64, error)
	CountShifts() (int64, error)
	RecentEntries(limit int) ([]ActivityRow, error)
	RecentLogins(limit int) ([]ActivityRow, error)
	RecentEntriesForUser(userID int64, limit int) ([]ActivityRow, error)
	DivisionOverview(divisionID *int64) ([]DivisionSummary, error)
}

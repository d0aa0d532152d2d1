// Package divisionmanager serves the self-service console a division
// manager sees: an overview of their division, department summaries, and
// placeholder approval and attendance figures until those subsystems land.
package divisionmanager

import "time"

// DivisionInfo is the header card of the console.
type DivisionInfo struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Color       string     `json:"color"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// DepartmentBrief identifies the department a manager runs.
type DepartmentBrief struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// ManagerInfo is one row of the division's management roster.
type ManagerInfo struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Role       string           `json:"role"`
	EmployeeID *string          `json:"employee_id,omitempty"`
	Department *DepartmentBrief `json:"department,omitempty"`
}

// Statistics are the headcount figures of the overview.
type Statistics struct {
	TotalDepartments  int64 `json:"total_departments"`
	TotalEmployees    int64 `json:"total_employees"`
	ActiveEmployees   int64 `json:"active_employees"`
	InactiveEmployees int64 `json:"inactive_employees"`
	ManagersCount     int   `json:"managers_count"`
}

// Overview is the full console payload.
type Overview struct {
	DivisionInfo DivisionInfo           `json:"division_info"`
	Statistics   Statistics             `json:"statistics"`
	Managers     []ManagerInfo          `json:"managers"`
	Settings     map[string]interface{} `json:"settings"`
	SystemStatus map[string]string      `json:"system_status"`
}

// Stats is the division-scoped dashboard widget.
type Stats struct {
	Division DivisionInfo `json:"division"`
	Figures  StatFigures  `json:"stats"`
}

type StatFigures struct {
	TotalDepartments int64   `json:"total_departments"`
	TotalEmployees   int64   `json:"total_employees"`
	ActiveEmployees  int64   `json:"active_employees"`
	TodayAttendance  float64 `json:"today_attendance"`
	ActiveShifts     int64   `json:"active_shifts"`
	PendingApprovals int     `json:"pending_approvals"`
}

// DepartmentSummary is one department card with its manager and headcount.
type DepartmentSummary struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Code          string       `json:"code"`
	Description   *string      `json:"description,omitempty"`
	DivisionID    int64        `json:"division_id"`
	ManagerID     *int64       `json:"manager_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	Manager       *ManagerInfo `json:"manager,omitempty"`
	EmployeeCount int64        `json:"employee_count"`
}

// PendingApproval is a placeholder approval row.
type PendingApproval struct {
	ID             int64     `json:"id"`
	Type           string    `json:"type"`
	EmployeeName   string    `json:"employee_name"`
	EmployeeID     string    `json:"employee_id"`
	DepartmentID   int64     `json:"department_id"`
	DepartmentName string    `json:"department_name"`
	RequestDate    time.Time `json:"request_date"`
	Reason         string    `json:"reason"`
	Status         string    `json:"status"`
}

// PendingApprovals is the approvals inbox payload.
type PendingApprovals struct {
	DivisionID   int64             `json:"division_id"`
	TotalPending int               `json:"total_pending"`
	Approvals    []PendingApproval `json:"approvals"`
}

type RepositoryAPI interface {
	DivisionInfo(divisionID int64) (*DivisionInfo, error)
	CountDepartments(divisionID int64) (int64, error)
	CountEmployees(divisionID int64) (total, active int64, err error)
	Managers(divisionID int64) ([]ManagerInfo, error)
	Departments(divisionID int64) ([]DepartmentSummary, error)
	CountActiveShifts() (int64, error)
}

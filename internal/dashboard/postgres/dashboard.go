package postgres

import (
	"gorm.io/gorm"

	"github.com/frahmantamala/factoryshift/internal/dashboard"
)

// DashboardRepository implements dashboard.RepositoryAPI using GORM
type DashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) dashboard.RepositoryAPI {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) CountDivisions() (int64, error) {
	var count int64
	err := r.db.Table("divisions").Count(&count).Error
	return count, err
}

func (r *DashboardRepository) CountDepartments(divisionID *int64) (int64, error) {
	query := r.db.Table("departments")
	if divisionID != nil {
		query = query.Where("division_id = ?", *divisionID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *DashboardRepository) CountUsers(divisionID, departmentID *int64) (int64, error) {
	query := r.db.Table("users")
	if divisionID != nil {
		query = query.Where("division_id = ?", *divisionID)
	}
	if departmentID != nil {
		query = query.Where("department_id = ?", *departmentID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *DashboardRepository) CountShifts() (int64, error) {
	var count int64
	err := r.db.Table("shifts").Count(&count).Error
	return count, err
}

const activitySelect = `audit_logs.id, audit_logs.action, audit_logs.resource,
	COALESCE(users.full_name, '') AS user_name, audit_logs.details,
	audit_logs.ip_address, audit_logs.created_at`

func (r *DashboardRepository) RecentEntries(limit int) ([]dashboard.ActivityRow, error) {
	var rows []dashboard.ActivityRow
	err := r.db.Table("audit_logs").
		Select(activitySelect).
		Joins("LEFT JOIN users ON users.id = audit_logs.user_id").
		Order("audit_logs.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *DashboardRepository) RecentLogins(limit int) ([]dashboard.ActivityRow, error) {
	var rows []dashboard.ActivityRow
	err := r.db.Table("audit_logs").
		Select(activitySelect).
		Joins("LEFT JOIN users ON users.id = audit_logs.user_id").
		Where("audit_logs.action = ? AND audit_logs.resource = ?", "login", "auth").
		Order("audit_logs.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *DashboardRepository) RecentEntriesForUser(userID int64, limit int) ([]dashboard.ActivityRow, error) {
	var rows []dashboard.ActivityRow
	err := r.db.Table("audit_logs").
		Select(activitySelect).
		Joins("LEFT JOIN users ON users.id = audit_logs.user_id").
		Where("audit_logs.user_id = ?", userID).
		Order("audit_logs.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *DashboardRepository) DivisionOverview(divisionID *int64) ([]dashboard.DivisionSummary, error) {
	query := r.db.Table("divisions").
		Select(`divisions.id, divisions.name, divisions.description, divisions.color,
			divisions.created_at,
			(SELECT COUNT(*) FROM departments WHERE departments.division_id = divisions.id) AS department_count,
			(SELECT COUNT(*) FROM users WHERE users.division_id = divisions.id) AS employee_count`).
		Order("divisions.name ASC")
	if divisionID != nil {
		query = query.Where("divisions.id = ?", *divisionID)
	}

	var summaries []dashboard.DivisionSummary
	err := query.Scan(&summaries).Error
	return summaries, err
}

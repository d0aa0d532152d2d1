package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/department"
	"github.com/frahmantamala/factoryshift/internal/division"
	"github.com/frahmantamala/factoryshift/internal/divisionmanager"
	"github.com/frahmantamala/factoryshift/internal/shift"
	"github.com/frahmantamala/factoryshift/internal/user"
)

// ConsoleRepository implements divisionmanager.RepositoryAPI using GORM
type ConsoleRepository struct {
	db *gorm.DB
}

func NewConsoleRepository(db *gorm.DB) divisionmanager.RepositoryAPI {
	return &ConsoleRepository{db: db}
}

func (r *ConsoleRepository) DivisionInfo(divisionID int64) (*divisionmanager.DivisionInfo, error) {
	var d division.Division
	err := r.db.Where("id = ?", divisionID).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("division not found", internal.ErrCodeDivisionNotFound)
		}
		return nil, err
	}
	createdAt := d.CreatedAt
	return &divisionmanager.DivisionInfo{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Color:       d.Color,
		CreatedAt:   &createdAt,
	}, nil
}

func (r *ConsoleRepository) CountDepartments(divisionID int64) (int64, error) {
	var count int64
	err := r.db.Model(&department.Department{}).Where("division_id = ?", divisionID).Count(&count).Error
	return count, err
}

func (r *ConsoleRepository) CountEmployees(divisionID int64) (total, active int64, err error) {
	if err = r.db.Model(&user.User{}).Where("division_id = ?", divisionID).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = r.db.Model(&user.User{}).
		Where("division_id = ? AND is_active = ?", divisionID, true).
		Count(&active).Error
	return total, active, err
}

func (r *ConsoleRepository) Managers(divisionID int64) ([]divisionmanager.ManagerInfo, error) {
	var rows []user.User
	err := r.db.
		Where("division_id = ? AND role IN ?", divisionID, []authz.Role{authz.RoleDivisionManager, authz.RoleDepartmentManager}).
		Order("full_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	managers := make([]divisionmanager.ManagerInfo, 0, len(rows))
	for _, u := range rows {
		info := divisionmanager.ManagerInfo{
			ID:         u.ID,
			Name:       u.FullName,
			Email:      u.Email,
			Role:       string(u.Role),
			EmployeeID: u.EmployeeID,
		}
		if u.Role == authz.RoleDepartmentManager && u.DepartmentID != nil {
			var d department.Department
			if err := r.db.Where("id = ?", *u.DepartmentID).First(&d).Error; err == nil {
				info.Department = &divisionmanager.DepartmentBrief{ID: d.ID, Name: d.Name, Code: d.Code}
			}
		}
		managers = append(managers, info)
	}
	return managers, nil
}

func (r *ConsoleRepository) Departments(divisionID int64) ([]divisionmanager.DepartmentSummary, error) {
	var departments []department.Department
	err := r.db.Where("division_id = ?", divisionID).Order("name ASC").Find(&departments).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]divisionmanager.DepartmentSummary, 0, len(departments))
	for _, d := range departments {
		summary := divisionmanager.DepartmentSummary{
			ID:          d.ID,
			Name:        d.Name,
			Code:        d.Code,
			Description: d.Description,
			DivisionID:  d.DivisionID,
			ManagerID:   d.ManagerID,
			CreatedAt:   d.CreatedAt,
		}

		if err := r.db.Model(&user.User{}).
			Where("department_id = ?", d.ID).
			Count(&summary.EmployeeCount).Error; err != nil {
			return nil, err
		}

		if d.ManagerID != nil {
			var m user.User
			if err := r.db.Where("id = ?", *d.ManagerID).First(&m).Error; err == nil {
				summary.Manager = &divisionmanager.ManagerInfo{
					ID:         m.ID,
					Name:       m.FullName,
					Email:      m.Email,
					Role:       string(m.Role),
					EmployeeID: m.EmployeeID,
				}
			}
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (r *ConsoleRepository) CountActiveShifts() (int64, error) {
	var count int64
	err := r.db.Model(&shift.Shift{}).Count(&count).Error
	return count, err
}

package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/department"
)

// DepartmentRepository implements department.RepositoryAPI using GORM
type DepartmentRepository struct {
	db       *gorm.DB
	recorder audit.Recorder
}

func NewDepartmentRepository(db *gorm.DB, recorder audit.Recorder) department.RepositoryAPI {
	return &DepartmentRepository{db: db, recorder: recorder}
}

func (r *DepartmentRepository) List(scope authz.Scope, divisionID *int64) ([]*department.Department, error) {
	query := r.db.Model(&department.Department{})

	switch {
	case scope.All:
	case scope.DivisionID != nil:
		query = query.Where("division_id = ?", *scope.DivisionID)
	case scope.DepartmentID != nil:
		query = query.Where("id = ?", *scope.DepartmentID)
	}
	if divisionID != nil {
		query = query.Where("division_id = ?", *divisionID)
	}

	var departments []*department.Department
	err := query.Order("name ASC").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) GetByID(id int64) (*department.Department, error) {
	var d department.Department
	err := r.db.Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) CodeTaken(code string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.Model(&department.Department{}).Where("code = ?", code)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DepartmentRepository) DivisionExists(divisionID int64) (bool, error) {
	var count int64
	if err := r.db.Table("divisions").Where("id = ?", divisionID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DepartmentRepository) EmployeeCount(id int64) (int64, error) {
	var count int64
	err := r.db.Table("users").Where("department_id = ?", id).Count(&count).Error
	return count, err
}

func (r *DepartmentRepository) Create(d *department.Department, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		entry.ResourceID = &d.ID
		return r.recorder.Record(tx, entry)
	})
}

func (r *DepartmentRepository) Update(d *department.Department, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(d).Error; err != nil {
			return err
		}
		return r.recorder.Record(tx, entry)
	})
}

func (r *DepartmentRepository) Delete(id int64, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&department.Department{}, id).Error; err != nil {
			return err
		}
		return r.recorder.Record(tx, entry)
	})
}

// AssignManager runs the three-way update in one transaction. The prior
// manager is matched by the department's manager_id back-reference, not by
// scanning for the department_manager role.
func (r *DepartmentRepository) AssignManager(dept *department.Department, userID int64, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if dept.ManagerID != nil && *dept.ManagerID != userID {
			if err := tx.Table("users").
				Where("id = ?", *dept.ManagerID).
				Update("role", authz.RoleEmployee).Error; err != nil {
				return err
			}
		}
		if err := tx.Table("users").
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"role":          authz.RoleDepartmentManager,
				"division_id":   dept.DivisionID,
				"department_id": dept.ID,
			}).Error; err != nil {
			return err
		}
		// The new manager may already manage another department; clear that
		// back-reference so it does not go stale.
		if err := tx.Model(&department.Department{}).
			Where("manager_id = ? AND id <> ?", userID, dept.ID).
			Update("manager_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&department.Department{}).
			Where("id = ?", dept.ID).
			Update("manager_id", userID).Error; err != nil {
			return err
		}
		dept.ManagerID = &userID
		return r.recorder.Record(tx, entry)
	})
}

func (r *DepartmentRepository) RemoveManager(dept *department.Department, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if dept.ManagerID != nil {
			if err := tx.Table("users").
				Where("id = ?", *dept.ManagerID).
				Update("role", authz.RoleEmployee).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&department.Department{}).
			Where("id = ?", dept.ID).
			Update("manager_id", nil).Error; err != nil {
			return err
		}
		dept.ManagerID = nil
		return r.recorder.Record(tx, entry)
	})
}

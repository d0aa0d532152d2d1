package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/user"
)

// UserRepository implements user.RepositoryAPI using GORM
type UserRepository struct {
	db       *gorm.DB
	recorder audit.Recorder
}

func NewUserRepository(db *gorm.DB, recorder audit.Recorder) user.RepositoryAPI {
	return &UserRepository{db: db, recorder: recorder}
}

func (r *UserRepository) List(scope authz.Scope, filter user.ListFilter) ([]*user.User, int64, error) {
	query := r.db.Model(&user.User{})

	switch {
	case scope.All:
	case scope.DivisionID != nil:
		query = query.Where("division_id = ?", *scope.DivisionID)
	case scope.DepartmentID != nil:
		query = query.Where("department_id = ?", *scope.DepartmentID)
	case scope.SelfID != nil:
		query = query.Where("id = ?", *scope.SelfID)
	}

	if filter.DivisionID != nil {
		query = query.Where("division_id = ?", *filter.DivisionID)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("full_name LIKE ? OR username LIKE ? OR email LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var users []*user.User
	err := query.Order("id ASC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&users).Error
	return users, total, err
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) EmailTaken(email string, excludeID int64) (bool, error) {
	return r.taken("email = ?", email, excludeID)
}

func (r *UserRepository) UsernameTaken(username string, excludeID int64) (bool, error) {
	return r.taken("username = ?", username, excludeID)
}

func (r *UserRepository) EmployeeIDTaken(employeeID string, excludeID int64) (bool, error) {
	return r.taken("employee_id = ?", employeeID, excludeID)
}

func (r *UserRepository) taken(cond string, value string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.Model(&user.User{}).Where(cond, value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) DepartmentDivision(departmentID int64) (int64, error) {
	var divisionID int64
	err := r.db.Table("departments").
		Select("division_id").
		Where("id = ?", departmentID).
		Take(&divisionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
		}
		return 0, err
	}
	return divisionID, nil
}

func (r *UserRepository) Create(u *user.User, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		entry.ResourceID = &u.ID
		return r.recorder.Record(tx, entry)
	})
}

func (r *UserRepository) Update(u *user.User, clearManagedDepartment bool, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if clearManagedDepartment {
			if err := tx.Table("departments").
				Where("manager_id = ?", u.ID).
				Update("manager_id", nil).Error; err != nil {
				return err
			}
		}
		if err := tx.Save(u).Error; err != nil {
			return err
		}
		return r.recorder.Record(tx, entry)
	})
}

func (r *UserRepository) Delete(id int64, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("departments").
			Where("manager_id = ?", id).
			Update("manager_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&user.User{}, id).Error; err != nil {
			return err
		}
		return r.recorder.Record(tx, entry)
	})
}

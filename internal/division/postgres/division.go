package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/division"
)

// DivisionRepository implements division.RepositoryAPI using GORM
type DivisionRepository struct {
	db       *gorm.DB
	recorder audit.Recorder
}

func NewDivisionRepository(db *gorm.DB, recorder audit.Recorder) division.RepositoryAPI {
	return &DivisionRepository{db: db, recorder: recorder}
}

func (r *DivisionRepository) List(scope authz.Scope) ([]*division.Division, error) {
	query := r.db.Model(&division.Division{})
	if !scope.All && scope.DivisionID != nil {
		query = query.Where("id = ?", *scope.DivisionID)
	}

	var divisions []*division.Division
	err := query.Order("name ASC").Find(&divisions).Error
	return divisions, err
}

func (r *DivisionRepository) GetByID(id int64) (*division.Division, error) {
	var d division.Division
	err := r.db.Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("division not found", internal.ErrCodeDivisionNotFound)
		}
		return nil, err
	}
	return &d, nil
}

func (r *DivisionRepository) NameTaken(name string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.Model(&division.Division{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DivisionRepository) Usage(id int64) (division.Usage, error) {
	var usage division.Usage
	if err := r.db.Table("departments").Where("division_id = ?", id).Count(&usage.Departments).Error; err != nil {
		return usage, err
	}
	if err := r.db.Table("users").Where("division_id = ?", id).Count(&usage.Users).Error; err != nil {
		return usage, err
	}
	return usage, nil
}

func (r *DivisionRepository) Create(d *division.Division, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		entry.ResourceID = &d.ID
		return r.recorder.Record(tx, entry)
	})
}

func (r *DivisionRepository) Update(d *division.Division, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(d).Error; err != nil {
			return err
		}
		return r.recorder.Record(tx, entry)
	})
}

func (r *DivisionRepository) Delete(id int64, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&division.Division{}, id).Error; err != nil {
			return err
		}
		return r.recorder.Record(tx, entry)
	})
}

// AssignManager demotes whoever currently manages the division, matched by
// role and division placement, then promotes the new manager. A department
// assignment on the promoted user is dropped because division managers do
// not carry one.
func (r *DivisionRepository) AssignManager(divisionID, userID int64, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("users").
			Where("role = ? AND division_id = ? AND id <> ?", authz.RoleDivisionManager, divisionID, userID).
			Update("role", authz.RoleEmployee).Error; err != nil {
			return err
		}
		if err := tx.Table("users").
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"role":          authz.RoleDivisionManager,
				"division_id":   divisionID,
				"department_id": nil,
			}).Error; err != nil {
			return err
		}
		// A promoted department manager leaves their department behind;
		// release its back-reference.
		if err := tx.Table("departments").
			Where("manager_id = ?", userID).
			Update("manager_id", nil).Error; err != nil {
			return err
		}
		return r.recorder.Record(tx, entry)
	})
}

func (r *DivisionRepository) RemoveManager(divisionID int64, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("users").
			Where("role = ? AND division_id = ?", authz.RoleDivisionManager, divisionID).
			Update("role", authz.RoleEmployee).Error; err != nil {
			return err
		}
		return r.recorder.Record(tx, entry)
	})
}

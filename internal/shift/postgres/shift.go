package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/shift"
)

// ShiftRepository implements shift.RepositoryAPI using GORM
type ShiftRepository struct {
	db       *gorm.DB
	recorder audit.Recorder
}

func NewShiftRepository(db *gorm.DB, recorder audit.Recorder) shift.RepositoryAPI {
	return &ShiftRepository{db: db, recorder: recorder}
}

func (r *ShiftRepository) List() ([]*shift.Shift, error) {
	var shifts []*shift.Shift
	err := r.db.Order("start_time ASC").Find(&shifts).Error
	return shifts, err
}

func (r *ShiftRepository) GetByID(id int64) (*shift.Shift, error) {
	var s shift.Shift
	err := r.db.Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("shift not found", internal.ErrCodeShiftNotFound)
		}
		return nil, err
	}
	return &s, nil
}

func (r *ShiftRepository) NameTaken(name string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.Model(&shift.Shift{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ShiftRepository) Create(s *shift.Shift, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		entry.ResourceID = &s.ID
		return r.recorder.Record(tx, entry)
	})
}

func (r *ShiftRepository) Update(s *shift.Shift, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(s).Error; err != nil {
			return err
		}
		return r.recorder.Record(tx, entry)
	})
}

func (r *ShiftRepository) Delete(id int64, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&shift.Shift{}, id).Error; err != nil {
			return err
		}
		return r.recorder.Record(tx, entry)
	})
}

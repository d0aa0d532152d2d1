package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/settings"
)

// SettingsRepository implements settings.RepositoryAPI using GORM
type SettingsRepository struct {
	db       *gorm.DB
	recorder audit.Recorder
}

func NewSettingsRepository(db *gorm.DB, recorder audit.Recorder) settings.RepositoryAPI {
	return &SettingsRepository{db: db, recorder: recorder}
}

func (r *SettingsRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&settings.Setting{}).Count(&count).Error
	return count, err
}

func (r *SettingsRepository) All() ([]*settings.Setting, error) {
	var rows []*settings.Setting
	err := r.db.Order("category ASC, key ASC").Find(&rows).Error
	return rows, err
}

func (r *SettingsRepository) ByCategories(categories []string) ([]*settings.Setting, error) {
	var rows []*settings.Setting
	err := r.db.Where("category IN ?", categories).
		Order("category ASC, key ASC").
		Find(&rows).Error
	return rows, err
}

func (r *SettingsRepository) Get(category, key string) (*settings.Setting, error) {
	var row settings.Setting
	err := r.db.Where("category = ? AND key = ?", category, key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *SettingsRepository) InitDefaults(defaults []*settings.Setting) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, def := range defaults {
			var count int64
			if err := tx.Model(&settings.Setting{}).Where("key = ?", def.Key).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				if err := tx.Create(def).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *SettingsRepository) Upsert(s *settings.Setting, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(s).Error; err != nil {
			return err
		}
		entry.ResourceID = &s.ID
		return r.recorder.Record(tx, entry)
	})
}

func (r *SettingsRepository) ResetCategory(category string, defaults []*settings.Setting, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category = ?", category).Delete(&settings.Setting{}).Error; err != nil {
			return err
		}
		for _, def := range defaults {
			if err := tx.Create(def).Error; err != nil {
				return err
			}
		}
		return r.recorder.Record(tx, entry)
	})
}

func (r *SettingsRepository) ResetAll(defaults []*settings.Setting, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&settings.Setting{}).Error; err != nil {
			return err
		}
		for _, def := range defaults {
			if err := tx.Create(def).Error; err != nil {
				return err
			}
		}
		return r.recorder.Record(tx, entry)
	})
}

package settings

import (
	"encoding/json"
	"time"

	"github.com/frahmantamala/factoryshift/internal/audit"
)

// Setting is one key in the system configuration store. Values are
// free-form JSON.
type Setting struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	Key         string          `json:"key" gorm:"uniqueIndex;not null"`
	Value       json.RawMessage `json:"value" gorm:"type:jsonb;not null"`
	Category    string          `json:"category" gorm:"not null"`
	Description *string         `json:"description,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	UpdatedBy   *int64          `json:"updated_by,omitempty" gorm:"column:updated_by"`
}

func (Setting) TableName() string {
	return "system_settings"
}

// Grouped is the wire shape of the settings tree: category -> key -> value.
type Grouped map[string]map[string]json.RawMessage

type RepositoryAPI interface {
	Count() (int64, error)
	All() ([]*Setting, error)
	ByCategories(categories []string) ([]*Setting, error)
	Get(category, key string) (*Setting, error)
	// InitDefaults inserts any default keys that are missing, leaving
	// existing values untouched.
	InitDefaults(defaults []*Setting) error
	// Upsert writes the setting and the audit entry in one transaction.
	Upsert(s *Setting, entry *audit.Entry) error
	// ResetCategory drops the category and reinstates the given defaults
	// in one transaction.
	ResetCategory(category string, defaults []*Setting, entry *audit.Entry) error
	// ResetAll drops every setting and reinstates all defaults.
	ResetAll(defaults []*Setting, entry *audit.Entry) error
}

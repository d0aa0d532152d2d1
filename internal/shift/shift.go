package shift

import (
	"time"

	"github.com/frahmantamala/factoryshift/internal/audit"
)

// Shift is a named working window, reference data shared by the whole
// plant.
type Shift struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	StartTime   string    `json:"start_time" gorm:"column:start_time;not null"`
	EndTime     string    `json:"end_time" gorm:"column:end_time;not null"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Shift) TableName() string {
	return "shifts"
}

type RepositoryAPI interface {
	List() ([]*Shift, error)
	GetByID(id int64) (*Shift, error)
	NameTaken(name string, excludeID int64) (bool, error)
	Create(s *Shift, entry *audit.Entry) error
	Update(s *Shift, entry *audit.Entry) error
	Delete(id int64, entry *audit.Entry) error
}

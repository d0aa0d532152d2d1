package division

import (
	"time"

	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
)

// Division is a top-level organizational unit.
type Division struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description *string   `json:"description,omitempty"`
	Color       string    `json:"color" gorm:"default:blue"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Division) TableName() string {
	return "divisions"
}

// Usage is the dependent-record tally consulted before deletion.
type Usage struct {
	Departments int64
	Users       int64
}

type RepositoryAPI interface {
	List(scope authz.Scope) ([]*Division, error)
	GetByID(id int64) (*Division, error)
	NameTaken(name string, excludeID int64) (bool, error)
	Usage(id int64) (Usage, error)
	Create(d *Division, entry *audit.Entry) error
	Update(d *Division, entry *audit.Entry) error
	Delete(id int64, entry *audit.Entry) error
	// AssignManager promotes the user to division_manager of this division
	// and demotes any prior manager of the same division, atomically.
	AssignManager(divisionID, userID int64, entry *audit.Entry) error
	// RemoveManager demotes exactly the current manager(s) of the division.
	RemoveManager(divisionID int64, entry *audit.Entry) error
}

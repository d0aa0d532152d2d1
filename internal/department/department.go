package department

import (
	"time"

	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
)

// Department is an organizational unit inside a division.
type Department struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Code        string    `json:"code" gorm:"uniqueIndex;not null"`
	Description *string   `json:"description,omitempty"`
	DivisionID  int64     `json:"division_id" gorm:"column:division_id;not null"`
	ManagerID   *int64    `json:"manager_id" gorm:"column:manager_id"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Department) TableName() string {
	return "departments"
}

// Ref projects the record into the scoper's view of it.
func (d *Department) Ref() authz.DepartmentRef {
	return authz.DepartmentRef{ID: d.ID, DivisionID: d.DivisionID}
}

type RepositoryAPI interface {
	List(scope authz.Scope, divisionID *int64) ([]*Department, error)
	GetByID(id int64) (*Department, error)
	CodeTaken(code string, excludeID int64) (bool, error)
	DivisionExists(divisionID int64) (bool, error)
	EmployeeCount(id int64) (int64, error)
	Create(d *Department, entry *audit.Entry) error
	Update(d *Department, entry *audit.Entry) error
	Delete(id int64, entry *audit.Entry) error
	// AssignManager performs the three-way update: the new manager's role
	// and placement, the department's manager_id, and the demotion of the
	// prior manager matched by manager_id, in one transaction.
	AssignManager(dept *Department, userID int64, entry *audit.Entry) error
	// RemoveManager demotes the currently assigned manager and clears the
	// back-reference.
	RemoveManager(dept *Department, entry *audit.Entry) error
}

package user

import (
	"time"

	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
)

// User is the full account record owned by this package. The auth package
// keeps its own narrow read view of the same table.
type User struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	Username     string     `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;not null"`
	FullName     string     `json:"full_name" gorm:"column:full_name;not null"`
	EmployeeID   *string    `json:"employee_id" gorm:"column:employee_id"`
	Role         authz.Role `json:"role" gorm:"not null;default:'employee'"`
	DivisionID   *int64     `json:"division_id" gorm:"column:division_id"`
	DepartmentID *int64     `json:"department_id" gorm:"column:department_id"`
	AvatarURL    *string    `json:"avatar_url" gorm:"column:avatar_url"`
	IsActive     bool       `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Ref projects the record into the scoper's view of it.
func (u *User) Ref() authz.UserRef {
	return authz.UserRef{
		ID:           u.ID,
		Role:         u.Role,
		DivisionID:   u.DivisionID,
		DepartmentID: u.DepartmentID,
	}
}

// ListFilter narrows user listings on top of the actor's scope.
type ListFilter struct {
	DivisionID   *int64
	DepartmentID *int64
	Role         string
	Search       string
	Limit        int
	Offset       int
}

type RepositoryAPI interface {
	List(scope authz.Scope, filter ListFilter) ([]*User, int64, error)
	GetByID(id int64) (*User, error)
	EmailTaken(email string, excludeID int64) (bool, error)
	UsernameTaken(username string, excludeID int64) (bool, error)
	EmployeeIDTaken(employeeID string, excludeID int64) (bool, error)
	// DepartmentDivision returns the division the department belongs to,
	// or a not-found error when the department does not exist.
	DepartmentDivision(departmentID int64) (int64, error)
	Create(u *User, entry *audit.Entry) error
	// Update persists the user and, when demoting a department manager,
	// clears the managed department's back-reference in the same
	// transaction.
	Update(u *User, clearManagedDepartment bool, entry *audit.Entry) error
	// Delete removes the user, clearing any departments.manager_id
	// pointing at them in the same transaction.
	Delete(id int64, entry *audit.Entry) error
}

package notification

import (
	"time"

	"github.com/frahmantamala/factoryshift/internal/audit"
)

// Notification types accepted on the wire.
const (
	TypeInfo    = "info"
	TypeWarning = "warning"
	TypeAlert   = "alert"
	TypeSuccess = "success"
)

// Target audiences for a send.
const (
	TargetAll                = "all"
	TargetDivisionManagers   = "division_managers"
	TargetDepartmentManagers = "department_managers"
	TargetEmployees          = "employees"
	TargetSpecific           = "specific"
)

// Notification is one per-recipient inbox row.
type Notification struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	UserID    int64      `json:"user_id" gorm:"column:user_id;not null"`
	Title     string     `json:"title" gorm:"not null"`
	Message   string     `json:"message" gorm:"not null"`
	Type      string     `json:"type" gorm:"default:info"`
	Read      bool       `json:"read" gorm:"default:false"`
	ReadAt    *time.Time `json:"read_at,omitempty" gorm:"column:read_at"`
	CreatedBy *int64     `json:"created_by,omitempty" gorm:"column:created_by"`
	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Counts summarizes an inbox.
type Counts struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

type RepositoryAPI interface {
	// RecipientIDs resolves a target audience to active user ids,
	// optionally confined to one division.
	RecipientIDs(target string, specificIDs []int64, divisionID *int64) ([]int64, error)
	// CreateBatch inserts all rows and the audit entry in one
	// transaction.
	CreateBatch(notifications []*Notification, entry *audit.Entry) error
	ListForUser(userID int64, unreadOnly bool, limit, offset int) ([]*Notification, int64, error)
	CountsForUser(userID int64) (Counts, error)
	MarkRead(id, userID int64) error
	MarkAllRead(userID int64) error
	DeleteOwn(id, userID int64) error
}

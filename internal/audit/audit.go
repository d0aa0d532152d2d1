package audit

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Actions recorded across the feature packages.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
	ActionAssign = "assign_manager"
	ActionRemove = "remove_manager"
	ActionSend   = "send"
	ActionReset  = "reset"
)

// Entry is one append-only audit row. The application never updates or
// deletes these.
type Entry struct {
	ID         int64           `json:"id" gorm:"primaryKey"`
	UserID     *int64          `json:"user_id" gorm:"column:user_id"`
	Action     string          `json:"action" gorm:"column:action;not null"`
	Resource   string          `json:"resource" gorm:"column:resource;not null"`
	ResourceID *int64          `json:"resource_id" gorm:"column:resource_id"`
	Details    json.RawMessage `json:"details,omitempty" gorm:"column:details;type:jsonb"`
	IPAddress  *string         `json:"ip_address,omitempty" gorm:"column:ip_address"`
	UserAgent  *string         `json:"user_agent,omitempty" gorm:"column:user_agent"`
	CreatedAt  time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Entry) TableName() string {
	return "audit_logs"
}

// NewEntry builds an entry, marshalling details when present.
func NewEntry(actorID *int64, action, resource string, resourceID *int64, details interface{}) (*Entry, error) {
	e := &Entry{
		UserID:     actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return nil, err
		}
		e.Details = raw
	}
	return e, nil
}

// Recorder appends audit rows through the caller's transaction so the
// mutation and its trail commit or roll back together.
type Recorder interface {
	Record(tx *gorm.DB, entry *Entry) error
}

// ListFilter narrows the admin listing.
type ListFilter struct {
	Resource string
	Action   string
	UserID   *int64
	Limit    int
	Offset   int
}

type RepositoryAPI interface {
	Recorder
	List(filter ListFilter) ([]*Entry, int64, error)
	ListForDivision(divisionID int64, filter ListFilter) ([]*Entry, int64, error)
}

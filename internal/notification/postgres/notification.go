package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/notification"
)

// NotificationRepository implements notification.RepositoryAPI using GORM
type NotificationRepository struct {
	db       *gorm.DB
	recorder audit.Recorder
}

func NewNotificationRepository(db *gorm.DB, recorder audit.Recorder) notification.RepositoryAPI {
	return &NotificationRepository{db: db, recorder: recorder}
}

func (r *NotificationRepository) RecipientIDs(target string, specificIDs []int64, divisionID *int64) ([]int64, error) {
	query := r.db.Table("users").Where("is_active = ?", true)
	if divisionID != nil {
		query = query.Where("division_id = ?", *divisionID)
	}

	switch target {
	case notification.TargetAll:
	case notification.TargetDivisionManagers:
		query = query.Where("role = ?", authz.RoleDivisionManager)
	case notification.TargetDepartmentManagers:
		query = query.Where("role = ?", authz.RoleDepartmentManager)
	case notification.TargetEmployees:
		query = query.Where("role = ?", authz.RoleEmployee)
	case notification.TargetSpecific:
		query = query.Where("id IN ?", specificIDs)
	}

	var ids []int64
	err := query.Pluck("id", &ids).Error
	return ids, err
}

func (r *NotificationRepository) CreateBatch(notifications []*notification.Notification, entry *audit.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&notifications).Error; err != nil {
			return err
		}
		return r.recorder.Record(tx, entry)
	})
}

func (r *NotificationRepository) ListForUser(userID int64, unreadOnly bool, limit, offset int) ([]*notification.Notification, int64, error) {
	query := r.db.Model(&notification.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var notifications []*notification.Notification
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *NotificationRepository) CountsForUser(userID int64) (notification.Counts, error) {
	var counts notification.Counts
	base := r.db.Model(&notification.Notification{}).Where("user_id = ?", userID)
	if err := base.Count(&counts.Total).Error; err != nil {
		return counts, err
	}
	err := r.db.Model(&notification.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&counts.Unread).Error
	return counts, err
}

func (r *NotificationRepository) MarkRead(id, userID int64) error {
	now := time.Now()
	result := r.db.Model(&notification.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"read": true, "read_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.NewNotFoundError("notification not found", internal.ErrCodeNotificationNotFound)
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(userID int64) error {
	now := time.Now()
	return r.db.Model(&notification.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": now}).Error
}

func (r *NotificationRepository) DeleteOwn(id, userID int64) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&notification.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.NewNotFoundError("notification not found", internal.ErrCodeNotificationNotFound)
	}
	return nil
}

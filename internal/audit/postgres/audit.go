package postgres

import (
	"github.com/frahmantamala/factoryshift/internal/audit"
	"gorm.io/gorm"
)

// AuditRepository implements audit.RepositoryAPI using GORM
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

// Record appends the entry using tx, not the repository's own handle, so
// the caller's transaction carries it.
func (r *AuditRepository) Record(tx *gorm.DB, entry *audit.Entry) error {
	return tx.Create(entry).Error
}

func (r *AuditRepository) List(filter audit.ListFilter) ([]*audit.Entry, int64, error) {
	return r.list(r.db.Model(&audit.Entry{}), filter)
}

// ListForDivision restricts entries to actors inside the given division.
func (r *AuditRepository) ListForDivision(divisionID int64, filter audit.ListFilter) ([]*audit.Entry, int64, error) {
	query := r.db.Model(&audit.Entry{}).
		Where("user_id IN (?)", r.db.Table("users").Select("id").Where("division_id = ?", divisionID))
	return r.list(query, filter)
}

func (r *AuditRepository) list(query *gorm.DB, filter audit.ListFilter) ([]*audit.Entry, int64, error) {
	if filter.Resource != "" {
		query = query.Where("resource = ?", filter.Resource)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var entries []*audit.Entry
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&entries).Error
	return entries, total, err
}

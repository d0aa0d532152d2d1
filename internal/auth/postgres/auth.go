package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/factoryshift/internal/auth"
)

// AuthRepository loads user rows for credential checks and token
// resolution using GORM.
type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.RepositoryAPI {
	return &AuthRepository{db: db}
}

// GetByLogin resolves a login identifier, trying username first and
// falling back to email.
func (r *AuthRepository) GetByLogin(login string) (*auth.User, error) {
	var u auth.User
	err := r.db.Where("username = ?", login).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := r.db.Where("email = ?", login).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AuthRepository) GetByID(id int64) (*auth.User, error) {
	var u auth.User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

package user

import (
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/validation"
)

// CreateUserDTO is the admin-only account creation payload.
type CreateUserDTO struct {
	Email        string     `json:"email" validate:"required,email"`
	Username     string     `json:"username" validate:"required,min=3,max=50"`
	Password     string     `json:"password" validate:"required,min=8"`
	FullName     string     `json:"full_name" validate:"required,min=1,max=200"`
	EmployeeID   *string    `json:"employee_id,omitempty" validate:"omitempty,min=1,max=50"`
	Role         authz.Role `json:"role" validate:"required,oneof=admin division_manager department_manager employee"`
	DivisionID   *int64     `json:"division_id,omitempty"`
	DepartmentID *int64     `json:"department_id,omitempty"`
	AvatarURL    *string    `json:"avatar_url,omitempty" validate:"omitempty,url"`
	IsActive     *bool      `json:"is_active,omitempty"`
}

func (dto CreateUserDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

// UpdateUserDTO carries a partial update; nil fields are left untouched.
type UpdateUserDTO struct {
	Email        *string     `json:"email,omitempty" validate:"omitempty,email"`
	Username     *string     `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Password     *string     `json:"password,omitempty" validate:"omitempty,min=8"`
	FullName     *string     `json:"full_name,omitempty" validate:"omitempty,min=1,max=200"`
	EmployeeID   *string     `json:"employee_id,omitempty" validate:"omitempty,min=1,max=50"`
	Role         *authz.Role `json:"role,omitempty" validate:"omitempty,oneof=admin division_manager department_manager employee"`
	DivisionID   *int64      `json:"division_id,omitempty"`
	DepartmentID *int64      `json:"department_id,omitempty"`
	AvatarURL    *string     `json:"avatar_url,omitempty" validate:"omitempty,url"`
	IsActive     *bool       `json:"is_active,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

// touchesManagedFields reports whether the update goes beyond the fields a
// user may change on their own profile.
func (dto UpdateUserDTO) touchesManagedFields() bool {
	return dto.Role != nil || dto.DivisionID != nil || dto.DepartmentID != nil ||
		dto.IsActive != nil || dto.EmployeeID != nil
}

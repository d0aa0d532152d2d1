package department

import "github.com/frahmantamala/factoryshift/internal/validation"

type CreateDepartmentDTO struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Code        string  `json:"code" validate:"required,min=1,max=20"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	DivisionID  int64   `json:"division_id" validate:"required"`
}

func (dto CreateDepartmentDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

type UpdateDepartmentDTO struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Code        *string `json:"code,omitempty" validate:"omitempty,min=1,max=20"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	DivisionID  *int64  `json:"division_id,omitempty"`
}

func (dto UpdateDepartmentDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

type AssignManagerDTO struct {
	UserID int64 `json:"user_id" validate:"required"`
}

func (dto AssignManagerDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

package division

import "github.com/frahmantamala/factoryshift/internal/validation"

type CreateDivisionDTO struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       string  `json:"color,omitempty" validate:"omitempty,max=30"`
}

func (dto CreateDivisionDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

type UpdateDivisionDTO struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       *string `json:"color,omitempty" validate:"omitempty,max=30"`
}

func (dto UpdateDivisionDTO) Validate() error {
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

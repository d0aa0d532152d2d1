package shift

import "github.com/frahmantamala/factoryshift/internal/validation"

// Times travel as "HH:MM" wall-clock strings.
type CreateShiftDTO struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	StartTime   string  `json:"start_time" validate:"required,len=5"`
	EndTime     string  `json:"end_time" validate:"required,len=5"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

func (dto CreateShiftDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

type UpdateShiftDTO struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	StartTime   *string `json:"start_time,omitempty" validate:"omitempty,len=5"`
	EndTime     *string `json:"end_time,omitempty" validate:"omitempty,len=5"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

func (dto UpdateShiftDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

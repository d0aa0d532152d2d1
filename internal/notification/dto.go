package notification

import "github.com/frahmantamala/factoryshift/internal/validation"

type SendNotificationDTO struct {
	Title   string  `json:"title" validate:"required,min=1,max=200"`
	Message string  `json:"message" validate:"required,min=1,max=2000"`
	Type    string  `json:"type,omitempty" validate:"omitempty,oneof=info warning alert success"`
	Target  string  `json:"target" validate:"required,oneof=all division_managers department_managers employees specific"`
	UserIDs []int64 `json:"user_ids,omitempty"`
}

func (dto SendNotificationDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

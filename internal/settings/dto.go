package settings

import (
	"encoding/json"

	"github.com/frahmantamala/factoryshift/internal"
)

type UpdateSettingDTO struct {
	Value json.RawMessage `json:"value"`
}

func (dto UpdateSettingDTO) Validate() error {
	if len(dto.Value) == 0 || !json.Valid(dto.Value) {
		return internal.NewValidationError("value must be valid JSON", internal.ErrCodeInvalidSettingValue)
	}
	return nil
}

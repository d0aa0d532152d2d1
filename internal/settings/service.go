package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/core/events"
)

type ServiceAPI interface {
	GetGrouped(actor authz.Actor) (Grouped, error)
	UpdateSetting(actor authz.Actor, category, key string, dto UpdateSettingDTO) (*Setting, error)
	ResetCategory(actor authz.Actor, category string) error
	ResetAll(actor authz.Actor) error
}

// EventPublisher is the slice of the event bus the service publishes on.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service owns the settings tree: lazy default initialization, the
// division-manager category allowlist and audited writes.
type Service struct {
	repo   RepositoryAPI
	events EventPublisher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SetEventPublisher attaches an event bus; a nil publisher disables
// publishing.
func (s *Service) SetEventPublisher(p EventPublisher) {
	s.events = p
}

// GetGrouped returns the settings tree grouped by category. Admins see
// everything; division managers see the allowlisted categories only. The
// store is seeded from defaults on first read.
func (s *Service) GetGrouped(actor authz.Actor) (Grouped, error) {
	if actor.Role != authz.RoleAdmin && actor.Role != authz.RoleDivisionManager {
		return nil, internal.NewForbiddenError("not enough permissions to view settings", internal.ErrCodeScopeDenied)
	}

	if err := s.ensureInitialized(actor.ID); err != nil {
		return nil, err
	}

	var (
		rows []*Setting
		err  error
	)
	if actor.Role == authz.RoleDivisionManager {
		rows, err = s.repo.ByCategories(divisionManagerCategories)
	} else {
		rows, err = s.repo.All()
	}
	if err != nil {
		return nil, internal.NewInternalError("failed to load settings", err)
	}

	grouped := make(Grouped)
	for _, row := range rows {
		if grouped[row.Category] == nil {
			grouped[row.Category] = make(map[string]json.RawMessage)
		}
		grouped[row.Category][row.Key] = row.Value
	}
	return grouped, nil
}

// UpdateSetting upserts one key. Unknown keys are created in the named
// category, matching the permissive write behavior of the settings store.
func (s *Service) UpdateSetting(actor authz.Actor, category, key string, dto UpdateSettingDTO) (*Setting, error) {
	switch actor.Role {
	case authz.RoleAdmin:
	case authz.RoleDivisionManager:
		if !categoryAllowed(category, divisionManagerCategories) {
			return nil, internal.NewForbiddenError(
				fmt.Sprintf("division managers can only update %s settings", strings.Join(divisionManagerCategories, ", ")),
				internal.ErrCodeScopeDenied)
		}
	default:
		return nil, internal.NewForbiddenError("not enough permissions to update settings", internal.ErrCodeScopeDenied)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(category, key)
	if err != nil {
		return nil, internal.NewInternalError("failed to load setting", err)
	}

	action := audit.ActionUpdate
	details := map[string]interface{}{
		"category":  category,
		"key":       key,
		"new_value": json.RawMessage(dto.Value),
	}

	var row *Setting
	if existing == nil {
		action = audit.ActionCreate
		desc := fmt.Sprintf("Custom setting for %s", strings.ReplaceAll(key, "_", " "))
		row = &Setting{
			Key:         key,
			Value:       dto.Value,
			Category:    category,
			Description: &desc,
			UpdatedBy:   &actor.ID,
		}
	} else {
		details["old_value"] = existing.Value
		existing.Value = dto.Value
		existing.UpdatedBy = &actor.ID
		row = existing
	}

	entry, err := audit.NewEntry(&actor.ID, action, "settings", nil, details)
	if err != nil {
		return nil, internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.Upsert(row, entry); err != nil {
		s.logger.Error("update setting failed", "error", err, "category", category, "key", key)
		return nil, err
	}

	if s.events != nil {
		_ = s.events.Publish(context.Background(), events.NewSettingsUpdatedEvent(category, key, actor.ID))
	}

	s.logger.Info("setting updated", "category", category, "key", key, "actor_id", actor.ID)
	return row, nil
}

func (s *Service) ResetCategory(actor authz.Actor, category string) error {
	if actor.Role != authz.RoleAdmin {
		return internal.NewForbiddenError("only admin can reset settings", internal.ErrCodeScopeDenied)
	}
	if !validCategory(category) {
		return internal.NewValidationError(
			fmt.Sprintf("invalid category, must be one of: %s", strings.Join(categoryNames(), ", ")),
			internal.ErrCodeInvalidCategory)
	}

	defaults, err := defaultsFor(category, &actor.ID)
	if err != nil {
		return internal.NewInternalError("failed to build defaults", err)
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionReset, "settings", nil, map[string]string{"category": category})
	if err != nil {
		return internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.ResetCategory(category, defaults, entry); err != nil {
		s.logger.Error("reset settings category failed", "error", err, "category", category)
		return err
	}

	s.logger.Info("settings category reset", "category", category, "actor_id", actor.ID)
	return nil
}

func (s *Service) ResetAll(actor authz.Actor) error {
	if actor.Role != authz.RoleAdmin {
		return internal.NewForbiddenError("only admin can reset settings", internal.ErrCodeScopeDenied)
	}

	defaults, err := allDefaults(&actor.ID)
	if err != nil {
		return internal.NewInternalError("failed to build defaults", err)
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionReset, "settings", nil, map[string]string{"category": "all"})
	if err != nil {
		return internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.ResetAll(defaults, entry); err != nil {
		s.logger.Error("reset all settings failed", "error", err)
		return err
	}

	s.logger.Info("all settings reset", "actor_id", actor.ID)
	return nil
}

func (s *Service) ensureInitialized(actorID int64) error {
	count, err := s.repo.Count()
	if err != nil {
		return internal.NewInternalError("failed to count settings", err)
	}
	if count > 0 {
		return nil
	}

	defaults, err := allDefaults(&actorID)
	if err != nil {
		return internal.NewInternalError("failed to build defaults", err)
	}
	if err := s.repo.InitDefaults(defaults); err != nil {
		return internal.NewInternalError("failed to seed default settings", err)
	}
	return nil
}

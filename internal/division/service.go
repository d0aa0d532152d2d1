package division

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/core/events"
)

// UserDirectory is the slice of the user store this package needs for
// manager assignment checks.
type UserDirectory interface {
	GetRef(id int64) (authz.UserRef, error)
}

type ServiceAPI interface {
	List(actor authz.Actor) ([]*Division, error)
	Get(actor authz.Actor, id int64) (*Division, error)
	Create(actor authz.Actor, dto CreateDivisionDTO) (*Division, error)
	Update(actor authz.Actor, id int64, dto UpdateDivisionDTO) (*Division, error)
	Delete(actor authz.Actor, id int64) error
	AssignManager(actor authz.Actor, divisionID int64, dto AssignManagerDTO) error
	RemoveManager(actor authz.Actor, divisionID int64) error
}

// EventPublisher is the slice of the event bus the service publishes on.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo   RepositoryAPI
	users  UserDirectory
	events EventPublisher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, users UserDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: users, logger: logger}
}

// SetEventPublisher attaches an event bus; a nil publisher disables
// publishing.
func (s *Service) SetEventPublisher(p EventPublisher) {
	s.events = p
}

func (s *Service) List(actor authz.Actor) ([]*Division, error) {
	scope := authz.DivisionScope(actor)
	if scope.Empty {
		return []*Division{}, nil
	}
	return s.repo.List(scope)
}

func (s *Service) Get(actor authz.Actor, id int64) (*Division, error) {
	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dec := authz.CanSeeDivision(actor, d.ID); !dec.Allowed() {
		return nil, internal.NewForbiddenError(dec.Reason(), internal.ErrCodeScopeDenied)
	}
	return d, nil
}

func (s *Service) Create(actor authz.Actor, dto CreateDivisionDTO) (*Division, error) {
	if dec := authz.CanMutateDivision(actor); !dec.Allowed() {
		return nil, internal.NewForbiddenError(dec.Reason(), internal.ErrCodeScopeDenied)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.repo.NameTaken(dto.Name, 0)
	if err != nil {
		return nil, internal.NewInternalError("failed to check division name", err)
	}
	if taken {
		return nil, internal.NewConflictError("division name already exists", internal.ErrCodeDivisionNameTaken)
	}

	d := &Division{
		Name:        dto.Name,
		Description: dto.Description,
		Color:       dto.Color,
	}
	if d.Color == "" {
		d.Color = "blue"
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionCreate, "divisions", nil, map[string]string{"name": d.Name})
	if err != nil {
		return nil, internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.Create(d, entry); err != nil {
		s.logger.Error("create division failed", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("division created", "division_id", d.ID, "actor_id", actor.ID)
	return d, nil
}

func (s *Service) Update(actor authz.Actor, id int64, dto UpdateDivisionDTO) (*Division, error) {
	if dec := authz.CanMutateDivision(actor); !dec.Allowed() {
		return nil, internal.NewForbiddenError(dec.Reason(), internal.ErrCodeScopeDenied)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != d.Name {
		taken, err := s.repo.NameTaken(*dto.Name, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to check division name", err)
		}
		if taken {
			return nil, internal.NewConflictError("division name already exists", internal.ErrCodeDivisionNameTaken)
		}
		d.Name = *dto.Name
	}
	if dto.Description != nil {
		d.Description = dto.Description
	}
	if dto.Color != nil {
		d.Color = *dto.Color
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionUpdate, "divisions", &d.ID, map[string]string{"name": d.Name})
	if err != nil {
		return nil, internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.Update(d, entry); err != nil {
		s.logger.Error("update division failed", "error", err, "division_id", id)
		return nil, err
	}
	return d, nil
}

func (s *Service) Delete(actor authz.Actor, id int64) error {
	if dec := authz.CanMutateDivision(actor); !dec.Allowed() {
		return internal.NewForbiddenError(dec.Reason(), internal.ErrCodeScopeDenied)
	}

	d, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	usage, err := s.repo.Usage(id)
	if err != nil {
		return internal.NewInternalError("failed to count division contents", err)
	}
	if usage.Departments > 0 {
		return internal.NewConflictError(
			fmt.Sprintf("cannot delete division with %d departments", usage.Departments),
			internal.ErrCodeDivisionNotEmpty)
	}
	if usage.Users > 0 {
		return internal.NewConflictError(
			fmt.Sprintf("cannot delete division with %d assigned users", usage.Users),
			internal.ErrCodeDivisionNotEmpty)
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionDelete, "divisions", &d.ID, map[string]string{"name": d.Name})
	if err != nil {
		return internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.Delete(id, entry); err != nil {
		s.logger.Error("delete division failed", "error", err, "division_id", id)
		return err
	}

	s.logger.Info("division deleted", "division_id", id, "actor_id", actor.ID)
	return nil
}

func (s *Service) AssignManager(actor authz.Actor, divisionID int64, dto AssignManagerDTO) error {
	if dec := authz.CanMutateDivision(actor); !dec.Allowed() {
		return internal.NewForbiddenError(dec.Reason(), internal.ErrCodeScopeDenied)
	}
	if err := dto.Validate(); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(divisionID); err != nil {
		return err
	}
	target, err := s.users.GetRef(dto.UserID)
	if err != nil {
		return err
	}
	if target.Role == authz.RoleAdmin {
		return internal.NewValidationError("admin accounts cannot be assigned as division managers", internal.ErrCodeInvalidRoleState)
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionAssign, "divisions", &divisionID, map[string]int64{"user_id": dto.UserID})
	if err != nil {
		return internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.AssignManager(divisionID, dto.UserID, entry); err != nil {
		s.logger.Error("assign division manager failed", "error", err, "division_id", divisionID, "user_id", dto.UserID)
		return err
	}

	if s.events != nil {
		_ = s.events.Publish(context.Background(), events.NewManagerAssignedEvent("division", divisionID, dto.UserID))
	}

	s.logger.Info("division manager assigned", "division_id", divisionID, "user_id", dto.UserID, "actor_id", actor.ID)
	return nil
}

func (s *Service) RemoveManager(actor authz.Actor, divisionID int64) error {
	if dec := authz.CanMutateDivision(actor); !dec.Allowed() {
		return internal.NewForbiddenError(dec.Reason(), internal.ErrCodeScopeDenied)
	}

	if _, err := s.repo.GetByID(divisionID); err != nil {
		return err
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionRemove, "divisions", &divisionID, nil)
	if err != nil {
		return internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.RemoveManager(divisionID, entry); err != nil {
		s.logger.Error("remove division manager failed", "error", err, "division_id", divisionID)
		return err
	}
	return nil
}

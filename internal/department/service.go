package department

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/core/events"
)

// UserDirectory is the slice of the user store needed for manager checks.
type UserDirectory interface {
	GetRef(id int64) (authz.UserRef, error)
}

type ServiceAPI interface {
	List(actor authz.Actor, divisionID *int64) ([]*Department, error)
	Get(actor authz.Actor, id int64) (*Department, error)
	Create(actor authz.Actor, dto CreateDepartmentDTO) (*Department, error)
	Update(actor authz.Actor, id int64, dto UpdateDepartmentDTO) (*Department, error)
	Delete(actor authz.Actor, id int64) error
	AssignManager(actor authz.Actor, departmentID int64, dto AssignManagerDTO) error
	RemoveManager(actor authz.Actor, departmentID int64) error
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

func (s *Service) List(actor authz.Actor, divisionID *int64) ([]*Department, error) {
	scope := authz.DepartmentScope(actor)
	if scope.Empty {
		return []*Department{}, nil
	}
	return s.repo.List(scope, divisionID)
}

func (s *Service) Get(actor authz.Actor, id int64) (*Department, error) {
	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dec := authz.CanSeeDepartment(actor, d.Ref()); !dec.Allowed() {
		return nil, internal.NewForbiddenError(dec.Reason(), internal.ErrCodeScopeDenied)
	}
	return d, nil
}

func (s *Service) Create(actor authz.Actor, dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	placement := authz.DepartmentRef{DivisionID: dto.DivisionID}
	if dec := authz.CanMutateDepartment(actor, placement); !dec.Allowed() {
		return nil, internal.NewForbiddenError(dec.Reason(), internal.ErrCodeScopeDenied)
	}

	exists, err := s.repo.DivisionExists(dto.DivisionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check division", err)
	}
	if !exists {
		return nil, internal.NewNotFoundError("division not found", internal.ErrCodeDivisionNotFound)
	}

	taken, err := s.repo.CodeTaken(dto.Code, 0)
	if err != nil {
		return nil, internal.NewInternalError("failed to check department code", err)
	}
	if taken {
		return nil, internal.NewConflictError("department code already in use", internal.ErrCodeDepartmentCodeUsed)
	}

	d := &Department{
		Name:        dto.Name,
		Code:        dto.Code,
		Description: dto.Description,
		DivisionID:  dto.DivisionID,
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionCreate, "departments", nil, map[string]string{"code": d.Code})
	if err != nil {
		return nil, internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.Create(d, entry); err != nil {
		s.logger.Error("create department failed", "error", err, "code", dto.Code)
		return nil, err
	}

	s.logger.Info("department created", "department_id", d.ID, "actor_id", actor.ID)
	return d, nil
}

func (s *Service) Update(actor authz.Actor, id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dec := authz.CanMutateDepartment(actor, d.Ref()); !dec.Allowed() {
		return nil, internal.NewForbiddenError(dec.Reason(), internal.ErrCodeScopeDenied)
	}

	if dto.DivisionID != nil && *dto.DivisionID != d.DivisionID {
		// Moving across divisions is an admin decision.
		if actor.Role != authz.RoleAdmin {
			return nil, internal.NewForbiddenError("only admin can move departments between divisions", internal.ErrCodeScopeDenied)
		}
		exists, err := s.repo.DivisionExists(*dto.DivisionID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check division", err)
		}
		if !exists {
			return nil, internal.NewNotFoundError("division not found", internal.ErrCodeDivisionNotFound)
		}
		d.DivisionID = *dto.DivisionID
	}

	if dto.Code != nil && *dto.Code != d.Code {
		taken, err := s.repo.CodeTaken(*dto.Code, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to check department code", err)
		}
		if taken {
			return nil, internal.NewConflictError("department code already in use", internal.ErrCodeDepartmentCodeUsed)
		}
		d.Code = *dto.Code
	}
	if dto.Name != nil {
		d.Name = *dto.Name
	}
	if dto.Description != nil {
		d.Description = dto.Description
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionUpdate, "departments", &d.ID, map[string]string{"code": d.Code})
	if err != nil {
		return nil, internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.Update(d, entry); err != nil {
		s.logger.Error("update department failed", "error", err, "department_id", id)
		return nil, err
	}
	return d, nil
}

func (s *Service) Delete(actor authz.Actor, id int64) error {
	d, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if dec := authz.CanMutateDepartment(actor, d.Ref()); !dec.Allowed() {
		return internal.NewForbiddenError(dec.Reason(), internal.ErrCodeScopeDenied)
	}

	count, err := s.repo.EmployeeCount(id)
	if err != nil {
		return internal.NewInternalError("failed to count department members", err)
	}
	if count > 0 {
		return internal.NewConflictError(
			fmt.Sprintf("cannot delete department with %d assigned employees", count),
			internal.ErrCodeDepartmentNotEmpty)
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionDelete, "departments", &d.ID, map[string]string{"code": d.Code})
	if err != nil {
		return internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.Delete(id, entry); err != nil {
		s.logger.Error("delete department failed", "error", err, "department_id", id)
		return err
	}

	s.logger.Info("department deleted", "department_id", id, "actor_id", actor.ID)
	return nil
}

func (s *Service) AssignManager(actor authz.Actor, departmentID int64, dto AssignManagerDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	d, err := s.repo.GetByID(departmentID)
	if err != nil {
		return err
	}
	if dec := authz.CanMutateDepartment(actor, d.Ref()); !dec.Allowed() {
		return internal.NewForbiddenError(dec.Reason(), internal.ErrCodeScopeDenied)
	}

	target, err := s.users.GetRef(dto.UserID)
	if err != nil {
		return err
	}
	if target.Role == authz.RoleAdmin {
		return internal.NewValidationError("admin accounts cannot be assigned as department managers", internal.ErrCodeInvalidRoleState)
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionAssign, "departments", &departmentID, map[string]int64{"user_id": dto.UserID})
	if err != nil {
		return internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.AssignManager(d, dto.UserID, entry); err != nil {
		s.logger.Error("assign department manager failed", "error", err, "department_id", departmentID, "user_id", dto.UserID)
		return err
	}

	if s.events != nil {
		_ = s.events.Publish(context.Background(), events.NewManagerAssignedEvent("department", departmentID, dto.UserID))
	}

	s.logger.Info("department manager assigned", "department_id", departmentID, "user_id", dto.UserID, "actor_id", actor.ID)
	return nil
}

func (s *Service) RemoveManager(actor authz.Actor, departmentID int64) error {
	d, err := s.repo.GetByID(departmentID)
	if err != nil {
		return err
	}
	if dec := authz.CanMutateDepartment(actor, d.Ref()); !dec.Allowed() {
		return internal.NewForbiddenError(dec.Reason(), internal.ErrCodeScopeDenied)
	}
	if d.ManagerID == nil {
		return internal.NewNotFoundError("department has no manager assigned", internal.ErrCodeUserNotFound)
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionRemove, "departments", &departmentID, nil)
	if err != nil {
		return internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.RemoveManager(d, entry); err != nil {
		s.logger.Error("remove department manager failed", "error", err, "department_id", departmentID)
		return err
	}
	return nil
}

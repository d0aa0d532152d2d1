package shift

import (
	"log/slog"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
)

type ServiceAPI interface {
	List(actor authz.Actor) ([]*Shift, error)
	Get(actor authz.Actor, id int64) (*Shift, error)
	Create(actor authz.Actor, dto CreateShiftDTO) (*Shift, error)
	Update(actor authz.Actor, id int64, dto UpdateShiftDTO) (*Shift, error)
	Delete(actor authz.Actor, id int64) error
}

// Service manages shift reference data. Reads are open to every
// authenticated user; writes are admin-only.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(actor authz.Actor) ([]*Shift, error) {
	return s.repo.List()
}

func (s *Service) Get(actor authz.Actor, id int64) (*Shift, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(actor authz.Actor, dto CreateShiftDTO) (*Shift, error) {
	if actor.Role != authz.RoleAdmin {
		return nil, internal.NewForbiddenError("only admin can manage shifts", internal.ErrCodeScopeDenied)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.repo.NameTaken(dto.Name, 0)
	if err != nil {
		return nil, internal.NewInternalError("failed to check shift name", err)
	}
	if taken {
		return nil, internal.NewConflictError("shift name already exists", internal.ErrCodeShiftNameTaken)
	}

	sh := &Shift{
		Name:        dto.Name,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
		Description: dto.Description,
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionCreate, "shifts", nil, map[string]string{"name": sh.Name})
	if err != nil {
		return nil, internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.Create(sh, entry); err != nil {
		s.logger.Error("create shift failed", "error", err, "name", dto.Name)
		return nil, err
	}
	return sh, nil
}

func (s *Service) Update(actor authz.Actor, id int64, dto UpdateShiftDTO) (*Shift, error) {
	if actor.Role != authz.RoleAdmin {
		return nil, internal.NewForbiddenError("only admin can manage shifts", internal.ErrCodeScopeDenied)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	sh, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != sh.Name {
		taken, err := s.repo.NameTaken(*dto.Name, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to check shift name", err)
		}
		if taken {
			return nil, internal.NewConflictError("shift name already exists", internal.ErrCodeShiftNameTaken)
		}
		sh.Name = *dto.Name
	}
	if dto.StartTime != nil {
		sh.StartTime = *dto.StartTime
	}
	if dto.EndTime != nil {
		sh.EndTime = *dto.EndTime
	}
	if dto.Description != nil {
		sh.Description = dto.Description
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionUpdate, "shifts", &sh.ID, map[string]string{"name": sh.Name})
	if err != nil {
		return nil, internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.Update(sh, entry); err != nil {
		s.logger.Error("update shift failed", "error", err, "shift_id", id)
		return nil, err
	}
	return sh, nil
}

func (s *Service) Delete(actor authz.Actor, id int64) error {
	if actor.Role != authz.RoleAdmin {
		return internal.NewForbiddenError("only admin can manage shifts", internal.ErrCodeScopeDenied)
	}

	sh, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionDelete, "shifts", &sh.ID, map[string]string{"name": sh.Name})
	if err != nil {
		return internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.Delete(id, entry); err != nil {
		s.logger.Error("delete shift failed", "error", err, "shift_id", id)
		return err
	}
	return nil
}

package audit

import (
	"log/slog"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/authz"
)

type ServiceAPI interface {
	List(actor authz.Actor, filter ListFilter) ([]*Entry, int64, error)
}

// Service exposes the audit trail read-side. Writing happens through the
// Recorder inside each feature's own transaction.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns entries visible to the actor: admins see everything,
// division managers see entries produced by users of their division.
func (s *Service) List(actor authz.Actor, filter ListFilter) ([]*Entry, int64, error) {
	switch actor.Role {
	case authz.RoleAdmin:
		return s.repo.List(filter)
	case authz.RoleDivisionManager:
		if actor.DivisionID == nil {
			return []*Entry{}, 0, nil
		}
		return s.repo.ListForDivision(*actor.DivisionID, filter)
	default:
		return nil, 0, internal.NewForbiddenError("not enough permissions to view audit logs", internal.ErrCodeScopeDenied)
	}
}

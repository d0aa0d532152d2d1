package notification

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/factoryshift/internal"
	"github.com/frahmantamala/factoryshift/internal/audit"
	"github.com/frahmantamala/factoryshift/internal/authz"
	"github.com/frahmantamala/factoryshift/internal/core/events"
)

type ServiceAPI interface {
	Send(actor authz.Actor, dto SendNotificationDTO) (int, error)
	List(actor authz.Actor, unreadOnly bool, limit, offset int) ([]*Notification, int64, error)
	GetCounts(actor authz.Actor) (Counts, error)
	MarkRead(actor authz.Actor, id int64) error
	MarkAllRead(actor authz.Actor) error
	Delete(actor authz.Actor, id int64) error
}

// EventPublisher is the slice of the event bus services publish on.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

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

// Send fans the message out to every active user in the target audience
// and returns the recipient count. A division manager's audience is
// confined to their own division.
func (s *Service) Send(actor authz.Actor, dto SendNotificationDTO) (int, error) {
	if actor.Role != authz.RoleAdmin && actor.Role != authz.RoleDivisionManager {
		return 0, internal.NewForbiddenError("not enough permissions to send notifications", internal.ErrCodeScopeDenied)
	}
	if err := dto.Validate(); err != nil {
		return 0, err
	}
	if dto.Target == TargetSpecific && len(dto.UserIDs) == 0 {
		return 0, internal.NewValidationError("user_ids required for specific targeting", internal.ErrCodeNoRecipients)
	}

	var divisionID *int64
	if actor.Role == authz.RoleDivisionManager {
		if actor.DivisionID == nil {
			return 0, internal.NewValidationError("no division assigned", internal.ErrCodeNoRecipients)
		}
		divisionID = actor.DivisionID
	}

	recipients, err := s.repo.RecipientIDs(dto.Target, dto.UserIDs, divisionID)
	if err != nil {
		return 0, internal.NewInternalError("failed to resolve recipients", err)
	}
	if len(recipients) == 0 {
		return 0, internal.NewValidationError("no matching recipients", internal.ErrCodeNoRecipients)
	}

	notifType := dto.Type
	if notifType == "" {
		notifType = TypeInfo
	}

	rows := make([]*Notification, 0, len(recipients))
	for _, userID := range recipients {
		rows = append(rows, &Notification{
			UserID:    userID,
			Title:     dto.Title,
			Message:   dto.Message,
			Type:      notifType,
			CreatedBy: &actor.ID,
		})
	}

	entry, err := audit.NewEntry(&actor.ID, audit.ActionSend, "notifications", nil, map[string]interface{}{
		"target":     dto.Target,
		"recipients": len(recipients),
		"title":      dto.Title,
	})
	if err != nil {
		return 0, internal.NewInternalError("failed to build audit entry", err)
	}

	if err := s.repo.CreateBatch(rows, entry); err != nil {
		s.logger.Error("notification fan-out failed", "error", err, "target", dto.Target)
		return 0, err
	}

	if s.events != nil {
		_ = s.events.Publish(context.Background(), events.NewNotificationSentEvent(actor.ID, dto.Target, len(recipients), dto.Title))
	}

	s.logger.Info("notification sent", "target", dto.Target, "recipients", len(recipients), "actor_id", actor.ID)
	return len(recipients), nil
}

func (s *Service) List(actor authz.Actor, unreadOnly bool, limit, offset int) ([]*Notification, int64, error) {
	return s.repo.ListForUser(actor.ID, unreadOnly, limit, offset)
}

func (s *Service) GetCounts(actor authz.Actor) (Counts, error) {
	return s.repo.CountsForUser(actor.ID)
}

func (s *Service) MarkRead(actor authz.Actor, id int64) error {
	return s.repo.MarkRead(id, actor.ID)
}

func (s *Service) MarkAllRead(actor authz.Actor) error {
	return s.repo.MarkAllRead(actor.ID)
}

func (s *Service) Delete(actor authz.Actor, id int64) error {
	return s.repo.DeleteOwn(id, actor.ID)
}

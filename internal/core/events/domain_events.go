package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserCreated      = "user.created"
	EventTypeNotificationSent = "notification.sent"
	EventTypeManagerAssigned  = "manager.assigned"
	EventTypeSettingsUpdated  = "settings.updated"
)

type UserCreatedEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func NewUserCreatedEvent(userID int64, email, role string) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
				"role":    role,
			},
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}
}

type NotificationSentEvent struct {
	BaseEvent
	SenderID   int64  `json:"sender_id"`
	Target     string `json:"target"`
	Recipients int    `json:"recipients"`
	Title      string `json:"title"`
}

func NewNotificationSentEvent(senderID int64, target string, recipients int, title string) *NotificationSentEvent {
	return &NotificationSentEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeNotificationSent,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"sender_id":  senderID,
				"target":     target,
				"recipients": recipients,
				"title":      title,
			},
		},
		SenderID:   senderID,
		Target:     target,
		Recipients: recipients,
		Title:      title,
	}
}

type ManagerAssignedEvent struct {
	BaseEvent
	Scope     string `json:"scope"`
	UnitID    int64  `json:"unit_id"`
	ManagerID int64  `json:"manager_id"`
}

// NewManagerAssignedEvent records a manager landing on a unit; scope is
// "division" or "department".
func NewManagerAssignedEvent(scope string, unitID, managerID int64) *ManagerAssignedEvent {
	return &ManagerAssignedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeManagerAssigned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"scope":      scope,
				"unit_id":    unitID,
				"manager_id": managerID,
			},
		},
		Scope:     scope,
		UnitID:    unitID,
		ManagerID: managerID,
	}
}

type SettingsUpdatedEvent struct {
	BaseEvent
	Category string `json:"category"`
	Key      string `json:"key"`
	ActorID  int64  `json:"actor_id"`
}

func NewSettingsUpdatedEvent(category, key string, actorID int64) *SettingsUpdatedEvent {
	return &SettingsUpdatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSettingsUpdated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"category": category,
				"key":      key,
				"actor_id": actorID,
			},
		},
		Category: category,
		Key:      key,
		ActorID:  actorID,
	}
}

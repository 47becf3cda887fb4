package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/config"
	"github.com/civicdesk/complaint-service/internal/events"
)

// NotificationService reacts to complaint events. Delivery is a logging
// stub; the configured email sender and webhook are recorded with each
// entry so a real transport can slot in behind the same subscriptions.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService constructs the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{logger: logger, cfg: cfg}
}

// Register subscribes the service to the dispatcher's complaint events.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventComplaintSubmitted, s.onEvent("complaint submitted"))
	dispatcher.Subscribe(events.EventComplaintStatusChanged, s.onEvent("complaint status changed"))
	dispatcher.Subscribe(events.EventComplaintReassigned, s.onEvent("complaint reassigned"))
	dispatcher.Subscribe(events.EventDepartmentNotified, s.onEvent("department notified"))
}

func (s *NotificationService) onEvent(message string) events.EventHandler {
	return func(_ context.Context, event events.Event) error {
		s.logger.Info("notification: "+message,
			zap.String("event_id", event.ID),
			zap.String("complaint_id", event.ComplaintID),
			zap.String("actor_id", event.ActorID),
			zap.String("email_from", s.cfg.EmailFrom),
			zap.String("webhook_url", s.cfg.WebhookURL),
			zap.Any("payload", event.Payload),
		)
		return nil
	}
}

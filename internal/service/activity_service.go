package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/coaching-service/internal/events"
)

// ActivityRecorder counts delivered activity events.
type ActivityRecorder interface {
	RecordActivity(eventType string)
}

// ActivityService logs user activity published by the other services.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	recorder   ActivityRecorder
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, recorder ActivityRecorder) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger,
		recorder:   recorder,
	}
}

// RegisterHandlers subscribes to every activity event.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *ActivityService) handle(_ context.Context, event events.Event) error {
	a.logger.Info("activity",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload))
	if a.recorder != nil {
		a.recorder.RecordActivity(string(event.Type))
	}
	return nil
}

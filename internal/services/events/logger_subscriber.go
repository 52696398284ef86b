package events

import (
	"context"
	"fmt"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/ternarybob/arbor"
)

// AllEventTypes lists every event the application publishes
var AllEventTypes = []interfaces.EventType{
	interfaces.EventRecordIngested,
	interfaces.EventUploadCompleted,
	interfaces.EventTicketCreated,
	interfaces.EventTicketUpdated,
	interfaces.EventAlertSent,
}

// NewLoggerSubscriber creates an event handler that logs all events
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		logEvent := logger.Debug().
			Str("event_type", string(event.Type))

		switch payload := event.Payload.(type) {
		case *models.LogRecord:
			logEvent = logEvent.Str("record_id", payload.ID).Str("error_type", payload.ErrorType)
		case *models.Ticket:
			logEvent = logEvent.Str("ticket_id", payload.ID).Str("status", string(payload.Status))
		case *models.AlertRunResult:
			logEvent = logEvent.Int("sent", payload.Sent).Int("failed", payload.Failed)
		case map[string]interface{}:
			if file, ok := payload["file"].(string); ok {
				logEvent = logEvent.Str("file", file)
			}
		}

		logEvent.Msg("Event published")
		return nil
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to all known event types
func SubscribeLoggerToAllEvents(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	for _, eventType := range AllEventTypes {
		if err := eventService.Subscribe(eventType, subscriber); err != nil {
			return fmt.Errorf("failed to subscribe logger to event type %s: %w", eventType, err)
		}
	}

	logger.Debug().
		Int("event_type_count", len(AllEventTypes)).
		Msg("Logger subscribed to all event types")

	return nil
}

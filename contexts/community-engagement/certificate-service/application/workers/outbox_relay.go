package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "ugnayan/contexts/community-engagement/certificate-service/application"
	"ugnayan/contexts/community-engagement/certificate-service/application/commands"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

// OutboxRelay publishes pending delivery handoff rows to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Topic     string
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}
	topic := r.Topic
	if topic == "" {
		topic = commands.DeliveryRequestedEventType
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("certificate outbox listing failed",
			"event", "certificate_outbox_list_failed",
			"module", "community-engagement/certificate-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, message := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			logger.Error("certificate outbox payload decode failed",
				"event", "certificate_outbox_decode_failed",
				"module", "community-engagement/certificate-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Publisher.Publish(ctx, topic, envelope); err != nil {
			logger.Error("certificate outbox publish failed",
				"event", "certificate_outbox_publish_failed",
				"module", "community-engagement/certificate-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"event_id", envelope.EventID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, message.OutboxID, now); err != nil {
			logger.Error("certificate outbox mark published failed",
				"event", "certificate_outbox_mark_published_failed",
				"module", "community-engagement/certificate-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	if len(pending) > 0 {
		logger.Info("certificate outbox relay cycle completed",
			"event", "certificate_outbox_relay_completed",
			"module", "community-engagement/certificate-service",
			"layer", "worker",
			"published_count", len(pending),
		)
	}
	return nil
}

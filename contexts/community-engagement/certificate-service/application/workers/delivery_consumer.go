package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	application "ugnayan/contexts/community-engagement/certificate-service/application"
	"ugnayan/contexts/community-engagement/certificate-service/application/commands"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

const defaultDeliveryConsumerGroupName = "certificate-service-delivery-cg"

// DeliveryConsumer receives delivery handoff events and fans each recipient
// out to the outbound mail transport. A failed send is logged per recipient
// and does not abort the rest of the handoff; retries belong to the queue
// layer wrapping the worker.
type DeliveryConsumer struct {
	Subscriber    ports.EventSubscriber
	Mailer        ports.Mailer
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c DeliveryConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := c.ConsumerGroup
	if group == "" {
		group = defaultDeliveryConsumerGroupName
	}
	if err := c.Subscriber.Subscribe(ctx, commands.DeliveryRequestedEventType, group, c.handle); err != nil {
		logger.Error("certificate delivery consumer subscribe failed",
			"event", "certificate_delivery_subscribe_failed",
			"module", "community-engagement/certificate-service",
			"layer", "worker",
			"topic", commands.DeliveryRequestedEventType,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("certificate delivery consumer subscribed",
		"event", "certificate_delivery_subscribed",
		"module", "community-engagement/certificate-service",
		"layer", "worker",
		"topic", commands.DeliveryRequestedEventType,
		"consumer_group", group,
	)
	return nil
}

func (c DeliveryConsumer) handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	var handoff commands.DeliveryHandoff
	if err := json.Unmarshal(event.Data, &handoff); err != nil {
		logger.Error("certificate delivery payload decode failed",
			"event", "certificate_delivery_decode_failed",
			"module", "community-engagement/certificate-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	sent := 0
	for _, recipient := range handoff.Recipients {
		if strings.TrimSpace(recipient.Email) == "" {
			continue
		}
		err := c.Mailer.Send(ctx, ports.DeliveryMessage{
			ActivityID:     handoff.ActivityID,
			RecipientName:  recipient.Name,
			RecipientEmail: recipient.Email,
			Identifier:     recipient.Identifier,
			StorageURL:     recipient.StorageURL,
		})
		if err != nil {
			logger.Error("certificate delivery send failed",
				"event", "certificate_delivery_send_failed",
				"module", "community-engagement/certificate-service",
				"layer", "worker",
				"event_id", event.EventID,
				"activity_id", handoff.ActivityID,
				"identifier", recipient.Identifier,
				"error", err.Error(),
			)
			continue
		}
		sent++
	}

	logger.Info("certificate delivery handoff processed",
		"event", "certificate_delivery_processed",
		"module", "community-engagement/certificate-service",
		"layer", "worker",
		"event_id", event.EventID,
		"activity_id", handoff.ActivityID,
		"recipient_count", len(handoff.Recipients),
		"sent_count", sent,
	)
	return nil
}

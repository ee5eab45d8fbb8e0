package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/fleetgate/fleet-tracking-system/pkg/metrics"
	"github.com/fleetgate/fleet-tracking-system/pkg/rabbit"
	"github.com/rabbitmq/amqp091-go"
)

const (
	serviceName          = "tracking-engine"
	notificationExchange = "notifications_topic"
)

// NotificationProducer hands notifications to the external notification
// subsystem over the broker. Delivery is fire-and-forget: the tracking
// pipeline never waits on or retries a notification.
type NotificationProducer struct {
	client *rabbit.RabbitMQ
}

func NewNotificationProducer(client *rabbit.RabbitMQ) (*NotificationProducer, error) {
	if err := client.Channel.ExchangeDeclare(
		notificationExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to declare notification exchange: %w", err)
	}
	return &NotificationProducer{client: client}, nil
}

// Notify publishes the notification routed by recipient type, e.g.
// "notification.client.<uuid>".
func (p *NotificationProducer) Notify(ctx context.Context, n models.Notification) error {
	const op = "NotificationProducer.Notify"

	body, err := json.Marshal(n)
	if err != nil {
		metrics.RecordNotification(serviceName, "rabbit", err)
		return wrap.Error(ctx, fmt.Errorf("%s: failed to marshal notification: %w", op, err))
	}

	key := fmt.Sprintf("notification.%s.%s", n.RecipientType, n.RecipientID)

	err = p.client.Channel.PublishWithContext(ctx,
		notificationExchange,
		key,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now().UTC(),
			Body:        body,
		},
	)
	metrics.RecordNotification(serviceName, "rabbit", err)
	if err != nil {
		ctx = wrap.WithAction(ctx, "publish_notification")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to publish: %w", op, err))
	}
	return nil
}

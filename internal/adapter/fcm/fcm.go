// Package fcm pushes notifications straight to mobile devices through
// Firebase Cloud Messaging. It is an optional sink next to the broker
// producer; device token resolution is the notification subsystem's
// problem, this adapter only addresses recipient topics.
package fcm

import (
	"context"
	"encoding/base64"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/pkg/metrics"
)

const serviceName = "tracking-engine"

type Notifier struct {
	client *messaging.Client
}

// New builds a notifier from a credentials file path.
func New(ctx context.Context, credentialsFile string) (*Notifier, error) {
	return newNotifier(ctx, option.WithCredentialsFile(credentialsFile))
}

// NewFromBase64 builds a notifier from base64-encoded credentials, for
// deployments where mounting a file is awkward.
func NewFromBase64(ctx context.Context, credentialsBase64 string) (*Notifier, error) {
	raw, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode firebase credentials: %w", err)
	}
	return newNotifier(ctx, option.WithCredentialsJSON(raw))
}

func newNotifier(ctx context.Context, opt option.ClientOption) (*Notifier, error) {
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}
	return &Notifier{client: client}, nil
}

// Notify sends the notification to the recipient's FCM topic
// ("<recipient_type>-<uuid>", subscribed by the mobile apps).
func (n *Notifier) Notify(ctx context.Context, notification models.Notification) error {
	const op = "fcm.Notifier.Notify"

	data := map[string]string{
		"type":           "tracking_update",
		"recipient_type": string(notification.RecipientType),
	}
	if notification.JobID != nil {
		data["job_id"] = notification.JobID.String()
	}

	msg := &messaging.Message{
		Topic: fmt.Sprintf("%s-%s", notification.RecipientType, notification.RecipientID),
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					ContentAvailable: true,
					Sound:            "default",
				},
			},
		},
	}

	_, err := n.client.Send(ctx, msg)
	metrics.RecordNotification(serviceName, "fcm", err)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

package app

import (
	"context"
	"errors"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/service/autogate"
)

// multiNotifier delivers to every channel and reports the combined error.
// One failing channel does not stop the others.
type multiNotifier []autogate.Notifier

func (m multiNotifier) Notify(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package app

import (
	"context"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/internal/realtime"
	"github.com/google/uuid"
)

// jobAccessRepo answers the ownership questions topic authorization needs.
type jobAccessRepo interface {
	IsParticipant(ctx context.Context, jobID, userID uuid.UUID) (bool, error)
	BelongsToCompany(ctx context.Context, jobID, companyID uuid.UUID) (bool, error)
}

// newTopicAuthorizer gates joins to job and client rooms: drivers and
// clients must take part in the job, operators must own it, and a client
// room admits only its own client.
func newTopicAuthorizer(jobs jobAccessRepo) realtime.AuthorizeFunc {
	return func(ctx context.Context, identity realtime.Identity, topic realtime.Topic) error {
		kind, id, err := realtime.ParseTopic(string(topic))
		if err != nil {
			return err
		}

		switch kind {
		case "client":
			if identity.Class == types.ConnClient && identity.ClientID == id {
				return nil
			}
			return types.ErrTopicForbidden

		case "job":
			switch identity.Class {
			case types.ConnDriver:
				return allow(jobs.IsParticipant(ctx, id, identity.DriverID))
			case types.ConnClient:
				return allow(jobs.IsParticipant(ctx, id, identity.ClientID))
			case types.ConnOperator:
				return allow(jobs.BelongsToCompany(ctx, id, identity.CompanyID))
			}
			return types.ErrTopicForbidden

		default:
			return types.ErrTopicForbidden
		}
	}
}

func allow(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return types.ErrTopicForbidden
	}
	return nil
}

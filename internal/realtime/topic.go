package realtime

import (
	"strings"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/google/uuid"
)

// Topic is a named broadcast destination connections join to receive events.
type Topic string

const (
	prefixCompany = "company"
	prefixJob     = "job"
	prefixDriver  = "driver"
	prefixClient  = "client"
	prefixPublic  = "public-tracking"
)

func CompanyTopic(companyID uuid.UUID) Topic {
	return Topic(prefixCompany + ":" + companyID.String())
}

func JobTopic(jobID uuid.UUID) Topic {
	return Topic(prefixJob + ":" + jobID.String())
}

func DriverTopic(driverID uuid.UUID) Topic {
	return Topic(prefixDriver + ":" + driverID.String())
}

func ClientTopic(clientID uuid.UUID) Topic {
	return Topic(prefixClient + ":" + clientID.String())
}

func PublicTrackingTopic(jobID uuid.UUID) Topic {
	return Topic(prefixPublic + ":" + jobID.String())
}

// ParseTopic validates the "<kind>:<uuid>" form and returns kind and id.
func ParseTopic(raw string) (kind string, id uuid.UUID, err error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return "", uuid.Nil, types.ErrUnknownTopic
	}

	switch parts[0] {
	case prefixCompany, prefixJob, prefixDriver, prefixClient, prefixPublic:
	default:
		return "", uuid.Nil, types.ErrUnknownTopic
	}

	id, err = uuid.Parse(parts[1])
	if err != nil {
		return "", uuid.Nil, types.ErrUnknownTopic
	}

	return parts[0], id, nil
}

// Kind returns the topic prefix, or an empty string for a malformed topic.
func (t Topic) Kind() string {
	kind, _, err := ParseTopic(string(t))
	if err != nil {
		return ""
	}
	return kind
}

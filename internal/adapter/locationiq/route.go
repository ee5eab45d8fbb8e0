package locationiq

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
)

var ErrNoRoute = fmt.Errorf("no route found")

var domain = "https://us1.locationiq.com"

// Client resolves driving routes through the LocationIQ directions API.
// Used as the primary ETA source; callers fall back to a local model when
// a request fails.
type Client struct {
	apiKey string
	http   *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

type directionsPayload struct {
	Routes []struct {
		Duration float64 `json:"duration"` // seconds
		Distance float64 `json:"distance"` // meters
	} `json:"routes"`
}

func (c *Client) Route(ctx context.Context, from, to models.Location) (int, float64, error) {
	const op = "locationiq.Client.Route"

	url := fmt.Sprintf("%s/v1/directions/driving/%f,%f;%f,%f?key=%s&overview=false",
		domain, from.Longitude, from.Latitude, to.Longitude, to.Latitude, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: failed to build request: %w", op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, "external_service_failed")
		return 0, 0, wrap.Error(ctx, fmt.Errorf("%s: failed to make request to LocationIQ: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, "external_service_failed")
		return 0, 0, wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", op, resp.StatusCode))
	}

	var payload directionsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, 0, wrap.Error(ctx, fmt.Errorf("%s: failed to decode LocationIQ response: %w", op, err))
	}

	if len(payload.Routes) == 0 {
		return 0, 0, wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrNoRoute))
	}

	route := payload.Routes[0]
	minutes := int(math.Ceil(route.Duration / 60))
	if minutes < 1 {
		minutes = 1
	}

	return minutes, route.Distance / 1000, nil
}

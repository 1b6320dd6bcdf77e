package here

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/logger"
)

type summary struct {
	Duration int64 `json:"duration"`
}

// routesResponse covers both routers: transit sections carry travelSummary,
// routing sections carry summary.
type routesResponse struct {
	Routes []struct {
		Sections []struct {
			Summary       *summary `json:"summary"`
			TravelSummary *summary `json:"travelSummary"`
		} `json:"sections"`
	} `json:"routes"`
}

// total sums the section durations of the first route.
func (r routesResponse) total() time.Duration {
	if len(r.Routes) == 0 {
		return 0
	}
	var secs int64
	for _, s := range r.Routes[0].Sections {
		switch {
		case s.TravelSummary != nil:
			secs += s.TravelSummary.Duration
		case s.Summary != nil:
			secs += s.Summary.Duration
		}
	}
	return time.Duration(secs) * time.Second
}

// transportModes maps the non-transit modes onto the Routing API.
var transportModes = map[domain.TransitMode]string{
	domain.ModeDriving: "car",
	domain.ModeWalking: "pedestrian",
	domain.ModeCycling: "bicycle",
}

// Duration returns the travel time from origin to destination.
// at is the arrival time for domain.ArriveBy and the departure time for domain.DepartAt.
func (c *Client) Duration(ctx context.Context, origin, destination string, at time.Time, anchor domain.TimeAnchor) (time.Duration, error) {
	from, err := c.geocode(ctx, origin)
	if err != nil {
		return 0, err
	}
	to, err := c.geocode(ctx, destination)
	if err != nil {
		return 0, err
	}

	params := url.Values{}
	params.Set("origin", from.String())
	params.Set("destination", to.String())
	if anchor == domain.DepartAt {
		params.Set("departureTime", at.Format(time.RFC3339))
	} else {
		params.Set("arrivalTime", at.Format(time.RFC3339))
	}

	endpoint := c.cfg.TransitURL
	if mode, ok := transportModes[c.cfg.Mode]; ok {
		endpoint = c.cfg.RouterURL
		params.Set("transportMode", mode)
		params.Set("return", "summary")
	} else {
		params.Set("return", "travelSummary")
	}

	var resp routesResponse
	if err := c.getJSON(ctx, endpoint, params, &resp); err != nil {
		return 0, err
	}

	d := resp.total()
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s to %s", domain.ErrNoRoute, origin, destination)
	}
	logger.Debug("here: %s from %q to %q takes %s", anchor, origin, destination, d)
	return d, nil
}

package here

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/itinerary"
	"github.com/custodia-labs/transitsync/internal/logger"
)

type position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String formats the position as the "lat,lng" waypoint HERE expects.
func (p position) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

type geocodeResponse struct {
	Items []struct {
		Title    string   `json:"title"`
		Position position `json:"position"`
	} `json:"items"`
}

// geocode resolves an address to its best match. Successful results are cached.
func (c *Client) geocode(ctx context.Context, address string) (position, error) {
	key := itinerary.NormalizeAddress(address)
	if key == "" {
		return position{}, fmt.Errorf("%w: empty address", domain.ErrGeocodeFailed)
	}

	c.mu.Lock()
	pos, ok := c.coords[key]
	c.mu.Unlock()
	if ok {
		return pos, nil
	}

	params := url.Values{}
	params.Set("q", key)
	params.Set("limit", "1")

	var resp geocodeResponse
	if err := c.getJSON(ctx, c.cfg.GeocodeURL, params, &resp); err != nil {
		return position{}, fmt.Errorf("%w: %q: %w", domain.ErrGeocodeFailed, key, err)
	}
	if len(resp.Items) == 0 {
		return position{}, fmt.Errorf("%w: no match for %q", domain.ErrGeocodeFailed, key)
	}

	pos = resp.Items[0].Position
	logger.Debug("here: geocoded %q to %s (%s)", key, pos, resp.Items[0].Title)

	c.mu.Lock()
	c.coords[key] = pos
	c.mu.Unlock()
	return pos, nil
}

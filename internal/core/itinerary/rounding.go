package itinerary

import "time"

// RoundingInterval is the granularity of generated transit blocks.
const RoundingInterval = 15 * time.Minute

// RoundUp pads a travel duration to the next quarter hour.
// A full interval is always added, so an exact multiple still grows:
// RoundUp(30m) is 45m. Sub-second precision is dropped first.
func RoundUp(d time.Duration) time.Duration {
	secs := int64(d / time.Second)
	step := int64(RoundingInterval / time.Second)
	return time.Duration((secs/step+1)*step) * time.Second
}

package itinerary

import (
	"net/url"
	"strings"
)

// DirectionsURL returns an Apple Maps link for directions between two addresses.
func DirectionsURL(origin, destination string) string {
	return "http://maps.apple.com/?saddr=" + escape(NormalizeAddress(origin)) +
		"&daddr=" + escape(NormalizeAddress(destination))
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Package here implements the transit duration lookup on the HERE REST APIs.
//
// A lookup geocodes both addresses with the Geocoding & Search API and then
// asks a router for the travel time. Public transit uses the Public Transit
// API; driving, walking and cycling use the Routing API. Geocoding results
// are cached for the lifetime of the client and every request passes a
// shared rate limiter.
package here

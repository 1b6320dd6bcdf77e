// Package itinerary turns a day of located events into transit segments.
//
// It holds the pure parts of the engine: address normalisation and the
// location equivalence test, the quarter-hour rounding rule, and the walk
// over a day's ordered events that emits outbound and return-home legs.
// Travel durations come from a driven.TransitLookup supplied by the caller.
//
// # Import Rules
//
//   - Can Import: domain, ports/driven, logger
//   - Cannot Import: services, adapters, connectors
package itinerary

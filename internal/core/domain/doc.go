// Package domain defines the core business entities for transitsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - LocatedEvent: A timed source calendar appointment with an address
//   - FingerprintRecord: The last-seen digest of an event's transit-relevant fields
//   - TransitSegment: A synthesised travel block written to the destination calendar
//   - Settings: Engine configuration (home base, look-forward window, caps)
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CalendarSource: Fetches located events from the source calendar
//   - CalendarDestination: Writes and clears transit events on the destination calendar
//   - TransitLookup: Resolves the travel duration between two addresses
//   - EventStore: Located event persistence
//   - FingerprintStore: Change fingerprint persistence
//   - TransitStore: Transit segment persistence
//   - SchedulerStore: Background task state and history
//   - ConfigStore: Application configuration
//   - ConnectorFactory: Builds calendars and the transit lookup from settings
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven

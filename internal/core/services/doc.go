// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The sync orchestrator owns the sweep lifecycle: fetch, change and
// deletion detection, then a per-date rebuild of transit events. The
// scheduler drives it from cron schedules.
package services

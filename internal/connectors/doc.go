// Package connectors holds the calendar and routing adapters that talk to
// external services. Subpackages implement the driven calendar and transit
// ports; this package carries the entry filtering they share.
package connectors

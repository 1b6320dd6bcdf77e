// Package memory provides in-memory implementations of the driven store
// ports. They back the "memory" store driver and the service tests.
package memory

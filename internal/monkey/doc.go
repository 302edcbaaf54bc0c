// Package monkey owns the driver side of a record/replay session.
//
// Ownership boundary:
// - application start through a runner
// - stdout stream pump into the protocol demultiplexer
// - script replay onto the application's stdin
// - recording of events and application errors
//
// Lifecycle order:
// - idle -> recording | playing -> idle
package monkey

// Package protocol owns the driver<->application wire contract.
//
// Ownership boundary:
// - record model (event, app errors)
// - packet encoding
// - incremental demultiplexing of a chunked JSON document stream
// - caller-owned stream tail state
package protocol

// Package eventlog persists parameter events as a stream of CBOR records.
//
// A log file is a plain concatenation of CBOR-encoded publisher.Event
// values with integer keys; there is no header or framing. FileSink
// appends to it and Reader walks it back, optionally filtered.
package eventlog

// Package param provides Parameter, a named telemetry value cell with
// change tracking, and Table, the collection an application polls for
// parameters that are due for publishing or have an event pending.
//
// Lifecycle of a parameter:
//
//	unset --Set*--> set --Set* (changed or Always)--> publish + event pending
//	                 ^          Publish / Event clear the pending flags
//	                 +--Reset (or Publish in Once mode) returns to unset
//
// A parameter unset by a Once publish treats its next assignment as a
// change only when the text differs from the one last published.
//
// Hidden parameters keep storing values and tracking changes, but never
// report as publish- or event-ready.
package param

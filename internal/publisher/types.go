package publisher

import "time"

// MemoryDest is one memory destination inside an endpoint.
type MemoryDest struct {
	MemoryID uint16
	Offsets  map[int]uint16 // per-FC offset deltas; missing FC => 0
}

// TargetEndpoint is one target endpoint with one or more memory destinations.
type TargetEndpoint struct {
	TargetID uint32
	Endpoint string
	Protocol string
	Memories []MemoryDest
}

// StatusPlan locates the unit's device status block.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// Policy bounds one publish cycle of a parameter. Zero disables a limit.
type Policy struct {
	Timeout   time.Duration
	MaxErrors int
}

// Plan is the fully-built publish plan for one unit.
type Plan struct {
	UnitID  string
	Targets []TargetEndpoint
	Status  *StatusPlan // nil => status disabled
	Policy  Policy
}

// Logger is the logging the publisher needs; *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...any) {}

// internal/config/config.go
package config

type Config struct {
	Paramhub ParamhubConfig `yaml:"paramhub"`
}

type ParamhubConfig struct {
	Units        []UnitConfig       `yaml:"units"`
	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
	Events       EventsConfig       `yaml:"events"`
}

// EventsConfig selects where parameter events go besides the process log.
type EventsConfig struct {
	// File is a CBOR event log appended by every unit; empty disables it.
	File string `yaml:"file"`
}

// ---- STATUS MEMORY ----

// StatusMemoryConfig is where device status blocks are written.
// Optional: only units with source.status_slot use it.
type StatusMemoryConfig struct {
	Endpoint string `yaml:"endpoint"`
	UnitID   uint8  `yaml:"unit_id"`
}

// ---- UNIT ----

type UnitConfig struct {
	ID         string            `yaml:"id"`
	Source     SourceConfig      `yaml:"source"`
	Reads      []ReadConfig      `yaml:"reads"`
	Parameters []ParameterConfig `yaml:"parameters"`
	Targets    []TargetConfig    `yaml:"targets"`
	Poll       PollConfig        `yaml:"poll"`
	Publish    PublishConfig     `yaml:"publish"`
}

// ---- SOURCE ----

type SourceConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// Device status block (optional, opt-in)
	StatusSlot *uint16 `yaml:"status_slot"`
	DeviceName string  `yaml:"device_name"`
}

// ---- READ GEOMETRY ----

type ReadConfig struct {
	FC       uint8  `yaml:"fc"`
	Address  uint16 `yaml:"address"`
	Quantity uint16 `yaml:"quantity"`
}

// ---- PARAMETERS ----

// ParameterConfig binds a named parameter to source geometry.
type ParameterConfig struct {
	Name    string `yaml:"name"`
	FC      uint8  `yaml:"fc"`
	Address uint16 `yaml:"address"`
	Type    string `yaml:"type"`

	// Quantity is the register count of string/raw parameters.
	Quantity uint16 `yaml:"quantity"`

	// Decimals is the float text precision; nil => default.
	Decimals *int `yaml:"decimals"`

	Always bool `yaml:"always"`
	Hidden bool `yaml:"hidden"`
	Once   bool `yaml:"once"`
}

// ---- TARGET ----

const (
	ProtocolModbus = "modbus"
	ProtocolIngest = "ingest"
)

type TargetConfig struct {
	ID       uint32         `yaml:"id"`
	Endpoint string         `yaml:"endpoint"`
	Protocol string         `yaml:"protocol"` // modbus (default) | ingest
	Memories []MemoryConfig `yaml:"memories"`
}

type MemoryConfig struct {
	MemoryID uint16         `yaml:"memory_id"`
	Offsets  map[int]uint16 `yaml:"offsets"` // delta map; missing FC => 0
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- PUBLISH ----

// PublishConfig bounds how long a pending parameter is retried.
// Zero disables the corresponding limit.
type PublishConfig struct {
	TimeoutMs int `yaml:"timeout_ms"`
	MaxErrors int `yaml:"max_errors"`
}

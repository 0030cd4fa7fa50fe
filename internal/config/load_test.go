package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
paramhub:
  status_memory:
    endpoint: "127.0.0.1:1502"
    unit_id: 9
  events:
    file: /var/lib/paramhub/events.cbor
  units:
    - id: boiler
      source:
        endpoint: "10.0.0.5:502"
        unit_id: 1
        status_slot: 0
        device_name: "BOILER-ROOM-NORTH-WING"
      reads:
        - { fc: 4, address: 0, quantity: 16 }
        - { fc: 1, address: 0, quantity: 8 }
      parameters:
        - { name: temp, fc: 4, address: 0, type: float }
        - { name: pressure, fc: 4, address: 2, type: float, decimals: 1, always: true }
        - { name: label, fc: 4, address: 4, type: string, quantity: 4, hidden: true }
        - { name: pump, fc: 1, address: 3, type: bool, once: true }
      targets:
        - id: 1
          endpoint: "10.0.0.9:502"
          memories:
            - memory_id: 0
              offsets: { 4: 100, 1: 10 }
        - id: 2
          endpoint: "10.0.0.10:9000"
          protocol: ingest
          memories:
            - memory_id: 0
      publish:
        timeout_ms: 30000
        max_errors: 5
`

func TestLoad_DecodeValidateNormalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paramhub.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}
	Normalize(cfg)

	if cfg.Paramhub.Events.File != "/var/lib/paramhub/events.cbor" {
		t.Fatalf("events file not decoded: %q", cfg.Paramhub.Events.File)
	}

	u := cfg.Paramhub.Units[0]
	if u.ID != "boiler" || len(u.Parameters) != 4 {
		t.Fatalf("unexpected unit: %+v", u)
	}
	if u.Poll.IntervalMs != DefaultPollIntervalMs {
		t.Fatalf("poll interval not defaulted: %d", u.Poll.IntervalMs)
	}
	if u.Source.TimeoutMs != DefaultSourceTimeoutMs {
		t.Fatalf("timeout not defaulted: %d", u.Source.TimeoutMs)
	}
	if got := *u.Parameters[0].Decimals; got != 4 {
		t.Fatalf("temp decimals not defaulted: %d", got)
	}
	if got := *u.Parameters[1].Decimals; got != 1 {
		t.Fatalf("pressure decimals overwritten: %d", got)
	}
	if u.Parameters[2].Decimals != nil {
		t.Fatalf("string parameter must not get decimals")
	}
	if u.Targets[0].Protocol != ProtocolModbus || u.Targets[1].Protocol != ProtocolIngest {
		t.Fatalf("unexpected protocols: %q %q", u.Targets[0].Protocol, u.Targets[1].Protocol)
	}
	if u.Source.DeviceName != "BOILER-ROOM-NORT" {
		t.Fatalf("device name not truncated: %q", u.Source.DeviceName)
	}
	if u.Targets[0].Memories[0].Offsets[4] != 100 {
		t.Fatalf("offsets not decoded: %+v", u.Targets[0].Memories[0].Offsets)
	}
	if cfg.Paramhub.StatusMemory.UnitID != 9 {
		t.Fatalf("status memory unit id: %d", cfg.Paramhub.StatusMemory.UnitID)
	}
}

func TestDecode_UnknownFieldRejected(t *testing.T) {
	_, err := Decode(strings.NewReader("paramhub:\n  unitz: []\n"))
	if err == nil {
		t.Fatalf("expected unknown field error, got nil")
	}
}

func TestDecode_Empty(t *testing.T) {
	if _, err := Decode(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

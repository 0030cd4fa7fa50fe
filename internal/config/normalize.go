// internal/config/normalize.go
package config

import "github.com/tamzrod/modbus-paramhub/internal/param"

const (
	DefaultPollIntervalMs  = 1000
	DefaultSourceTimeoutMs = 1000
	DeviceNameMaxChars     = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for ui := range cfg.Paramhub.Units {
		u := &cfg.Paramhub.Units[ui]

		if u.Poll.IntervalMs == 0 {
			u.Poll.IntervalMs = DefaultPollIntervalMs
		}
		if u.Source.TimeoutMs <= 0 {
			u.Source.TimeoutMs = DefaultSourceTimeoutMs
		}

		for pi := range u.Parameters {
			p := &u.Parameters[pi]
			if p.Type == param.TypeFloat.String() && p.Decimals == nil {
				d := param.DefaultDecimals
				p.Decimals = &d
			}
		}

		for ti := range u.Targets {
			if u.Targets[ti].Protocol == "" {
				u.Targets[ti].Protocol = ProtocolModbus
			}
		}

		// Device name is ASCII (validated); keep the first 16 characters.
		if len(u.Source.DeviceName) > DeviceNameMaxChars {
			u.Source.DeviceName = u.Source.DeviceName[:DeviceNameMaxChars]
		}
	}
}

package poller

import (
	"fmt"
	"io"
	"time"

	cfg "github.com/tamzrod/modbus-paramhub/internal/config"
	pmodbus "github.com/tamzrod/modbus-paramhub/internal/poller/modbus"
)

// Build constructs the Poller of one unit from its source config.
// Assumes config has already passed validation and normalization.
//
// The read plan is computed before any connection is attempted, so a bad
// plan never opens a socket. The source client is then dialed once and
// reused while healthy; after a transport failure the Poller redials
// through the factory on a later tick.
func Build(u cfg.UnitConfig) (*Poller, func() error, error) {
	reads, err := readsFor(u)
	if err != nil {
		return nil, nil, fmt.Errorf("unit %q: %w", u.ID, err)
	}

	src := pmodbus.Config{
		Endpoint: u.Source.Endpoint,
		UnitID:   u.Source.UnitID,
		Timeout:  time.Duration(u.Source.TimeoutMs) * time.Millisecond,
	}
	dial := func() (Client, error) {
		c, err := pmodbus.New(src)
		if err != nil {
			return nil, fmt.Errorf("unit %q: dial %s: %w", u.ID, src.Endpoint, err)
		}
		return c, nil
	}

	// unreachable source at startup is fatal
	client, err := dial()
	if err != nil {
		return nil, nil, err
	}

	p, err := New(Config{
		UnitID:   u.ID,
		Interval: time.Duration(u.Poll.IntervalMs) * time.Millisecond,
		Reads:    reads,
	}, client, dial)
	if err != nil {
		if c, ok := client.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, nil, err
	}

	return p, p.Close, nil
}

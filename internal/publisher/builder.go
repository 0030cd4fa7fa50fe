package publisher

import (
	"errors"
	"time"

	cfg "github.com/tamzrod/modbus-paramhub/internal/config"
	"github.com/tamzrod/modbus-paramhub/internal/publisher/ingest"
	pmodbus "github.com/tamzrod/modbus-paramhub/internal/publisher/modbus"
)

// BuildPlan converts one unit config into a publish Plan.
// Assumes config has already passed validation and normalization.
func BuildPlan(u cfg.UnitConfig, statusMem cfg.StatusMemoryConfig) (Plan, error) {
	if u.ID == "" {
		return Plan{}, errors.New("publisher: unit.id required")
	}

	plan := Plan{
		UnitID: u.ID,
		Policy: Policy{
			Timeout:   time.Duration(u.Publish.TimeoutMs) * time.Millisecond,
			MaxErrors: u.Publish.MaxErrors,
		},
	}

	for _, t := range u.Targets {
		ep := TargetEndpoint{
			TargetID: t.ID,
			Endpoint: t.Endpoint,
			Protocol: t.Protocol,
		}

		for _, m := range t.Memories {
			ep.Memories = append(ep.Memories, MemoryDest{
				MemoryID: m.MemoryID,
				Offsets:  m.Offsets,
			})
		}

		plan.Targets = append(plan.Targets, ep)
	}

	if u.Source.StatusSlot != nil {
		plan.Status = &StatusPlan{
			Endpoint:   statusMem.Endpoint,
			UnitID:     statusMem.UnitID,
			BaseSlot:   *u.Source.StatusSlot,
			DeviceName: u.Source.DeviceName,
		}
	}

	return plan, nil
}

// closableClient is an endpoint client with a connection lifecycle.
type closableClient interface {
	EndpointClient
	Close() error
}

// BuildEndpointClients creates one client per unique endpoint of the plan,
// including the status endpoint.
func BuildEndpointClients(plan Plan, timeout time.Duration) (map[string]EndpointClient, func() error, error) {
	unique := map[string]string{}
	for _, t := range plan.Targets {
		unique[t.Endpoint] = t.Protocol
	}
	if plan.Status != nil {
		if _, ok := unique[plan.Status.Endpoint]; !ok {
			unique[plan.Status.Endpoint] = cfg.ProtocolModbus
		}
	}

	clients := make(map[string]EndpointClient)
	var closers []func() error

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	for endpoint, protocol := range unique {
		var (
			c   closableClient
			err error
		)
		switch protocol {
		case cfg.ProtocolIngest:
			c, err = ingest.NewEndpointClient(ingest.Config{Endpoint: endpoint, Timeout: timeout})
		default:
			c, err = pmodbus.NewEndpointClient(pmodbus.Config{Endpoint: endpoint, Timeout: timeout})
		}
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		clients[endpoint] = c
		closers = append(closers, c.Close)
	}

	return clients, closeAll, nil
}

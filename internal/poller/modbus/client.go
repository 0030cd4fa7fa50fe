package modbus

import (
	"errors"
	"fmt"
	"time"

	"github.com/goburrow/modbus"
)

// readAPI is the part of modbus.Client the poller reads through.
type readAPI interface {
	ReadCoils(address, quantity uint16) ([]byte, error)
	ReadDiscreteInputs(address, quantity uint16) ([]byte, error)
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
}

// Client reads one source device over Modbus TCP and returns unpacked
// bits and registers. It carries no value semantics.
type Client struct {
	handler *modbus.TCPClientHandler
	api     readAPI
}

type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration
}

// New dials the source device.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("poller modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("poller modbus: connect %s: %w", cfg.Endpoint, err)
	}

	return &Client{handler: h, api: modbus.NewClient(h)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.handler == nil {
		return nil
	}
	return c.handler.Close()
}

func (c *Client) ReadCoils(addr, qty uint16) ([]bool, error) {
	return readBits(c.api.ReadCoils, addr, qty)
}

func (c *Client) ReadDiscreteInputs(addr, qty uint16) ([]bool, error) {
	return readBits(c.api.ReadDiscreteInputs, addr, qty)
}

func (c *Client) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	return readRegisters(c.api.ReadHoldingRegisters, addr, qty)
}

func (c *Client) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	return readRegisters(c.api.ReadInputRegisters, addr, qty)
}

type readFunc func(address, quantity uint16) ([]byte, error)

func readBits(read readFunc, addr, qty uint16) ([]bool, error) {
	if qty == 0 {
		return nil, nil
	}
	b, err := read(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackBits(b, int(qty))
}

func readRegisters(read readFunc, addr, qty uint16) ([]uint16, error) {
	if qty == 0 {
		return nil, nil
	}
	b, err := read(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackRegisters(b, int(qty))
}

// unpackBits expands packed coil bytes, LSB first.
func unpackBits(data []byte, count int) ([]bool, error) {
	if len(data) < (count+7)/8 {
		return nil, fmt.Errorf("poller modbus: %d bytes for %d bits", len(data), count)
	}
	out := make([]bool, count)
	for i := range out {
		out[i] = data[i/8]&(1<<(i%8)) != 0
	}
	return out, nil
}

// unpackRegisters decodes big-endian registers.
func unpackRegisters(data []byte, count int) ([]uint16, error) {
	if len(data) < 2*count {
		return nil, fmt.Errorf("poller modbus: %d bytes for %d registers", len(data), count)
	}
	out := make([]uint16, count)
	for i := range out {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out, nil
}

package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// Coil values of a single-coil write (FC 5).
const (
	coilOn  uint16 = 0xFF00
	coilOff uint16 = 0x0000
)

// writeAPI is the part of modbus.Client used to publish values.
type writeAPI interface {
	WriteSingleCoil(address, value uint16) ([]byte, error)
	WriteMultipleCoils(address, quantity uint16, value []byte) ([]byte, error)
	WriteSingleRegister(address, value uint16) ([]byte, error)
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// EndpointClient is one TCP connection to a target endpoint.
// Requests are serialized: the unit id is switched per write.
// After a failed write the connection is dropped and redialed by the
// next write.
type EndpointClient struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	api     writeAPI
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("publisher modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("publisher modbus: connect %s: %w", cfg.Endpoint, err)
	}

	return &EndpointClient{
		handler: h,
		api:     modbus.NewClient(h),
	}, nil
}

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handler == nil {
		return nil
	}
	return c.handler.Close()
}

// WriteBits writes coils. Discrete inputs are read-only on a Modbus
// server, so area 2 is mirrored into coils as well.
// A single bit goes out as FC 5, more as FC 15.
func (c *EndpointClient) WriteBits(area byte, unitID uint8, addr uint16, bits []bool) error {
	if area != 1 && area != 2 {
		return fmt.Errorf("publisher modbus: bits cannot go to area %d", area)
	}
	if len(bits) == 0 {
		return errors.New("publisher modbus: empty bit write")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.selectUnit(unitID)

	var err error
	if len(bits) == 1 {
		v := coilOff
		if bits[0] {
			v = coilOn
		}
		_, err = c.api.WriteSingleCoil(addr, v)
	} else {
		_, err = c.api.WriteMultipleCoils(addr, uint16(len(bits)), packBits(bits))
	}
	return c.settle(err)
}

// WriteRegisters writes holding registers. Input registers (area 4) are
// read-only on a Modbus server and are mirrored into holding registers.
// A single register goes out as FC 6, more as FC 16.
func (c *EndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	if area != 3 && area != 4 {
		return fmt.Errorf("publisher modbus: registers cannot go to area %d", area)
	}
	if len(regs) == 0 {
		return errors.New("publisher modbus: empty register write")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.selectUnit(unitID)

	var err error
	if len(regs) == 1 {
		_, err = c.api.WriteSingleRegister(addr, regs[0])
	} else {
		_, err = c.api.WriteMultipleRegisters(addr, uint16(len(regs)), packRegisters(regs))
	}
	return c.settle(err)
}

func (c *EndpointClient) selectUnit(unitID uint8) {
	if c.handler != nil {
		c.handler.SlaveId = unitID
	}
}

// settle drops the connection after a transport failure. Modbus
// exceptions leave it open: the server answered.
func (c *EndpointClient) settle(err error) error {
	if err == nil {
		return nil
	}
	var mb *modbus.ModbusError
	if !errors.As(err, &mb) && c.handler != nil {
		_ = c.handler.Close()
	}
	return err
}

func packBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, v := range bits {
		if v {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, 2*len(regs))
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}

package poller

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClient struct {
	failFC uint8
	closed bool
}

func (f *fakeClient) ReadCoils(addr, qty uint16) ([]bool, error) {
	if f.failFC == 1 {
		return nil, errors.New("fail fc1")
	}
	return make([]bool, qty), nil
}

func (f *fakeClient) ReadDiscreteInputs(addr, qty uint16) ([]bool, error) {
	if f.failFC == 2 {
		return nil, errors.New("fail fc2")
	}
	return make([]bool, qty), nil
}

func (f *fakeClient) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	if f.failFC == 3 {
		return nil, errors.New("fail fc3")
	}
	return make([]uint16, qty), nil
}

func (f *fakeClient) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	if f.failFC == 4 {
		return nil, errors.New("fail fc4")
	}
	regs := make([]uint16, qty)
	for i := range regs {
		regs[i] = addr + uint16(i)
	}
	return regs, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func testConfig() Config {
	return Config{
		UnitID:   "u1",
		Interval: 1 * time.Second,
		Reads: []ReadBlock{
			{FC: 1, Address: 0, Quantity: 8},
			{FC: 3, Address: 0, Quantity: 10},
		},
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New(Config{}, &fakeClient{}, nil); err == nil {
		t.Fatalf("expected error for empty config")
	}
	if _, err := New(testConfig(), nil, nil); err == nil {
		t.Fatalf("expected error without client and factory")
	}
}

func TestPollOnce_Success(t *testing.T) {
	p, err := New(testConfig(), &fakeClient{}, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.PollOnce()
	if res.Err != nil {
		t.Fatalf("PollOnce err=%v", res.Err)
	}
	if len(res.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(res.Blocks))
	}
	if res.UnitID != "u1" {
		t.Fatalf("unexpected unit id %q", res.UnitID)
	}
}

func TestPollOnce_Failure(t *testing.T) {
	p, err := New(testConfig(), &fakeClient{failFC: 3}, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.PollOnce()
	if res.Err == nil {
		t.Fatalf("expected error, got nil")
	}
	if res.Blocks != nil {
		t.Fatalf("failed cycle must not commit blocks")
	}
}

func TestPollOnce_ReconnectsThroughFactory(t *testing.T) {
	bad := &fakeClient{failFC: 1}
	good := &fakeClient{}
	calls := 0

	factory := func() (Client, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("dial refused")
		}
		return good, nil
	}

	p, err := New(testConfig(), bad, factory)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	if res := p.PollOnce(); res.Err == nil {
		t.Fatalf("expected read error")
	}
	if !bad.closed {
		t.Fatalf("failed client must be closed")
	}

	res := p.PollOnce()
	if !errors.Is(res.Err, ErrNoClient) {
		t.Fatalf("expected ErrNoClient, got %v", res.Err)
	}

	if res := p.PollOnce(); res.Err != nil {
		t.Fatalf("expected recovery, got %v", res.Err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 factory calls, got %d", calls)
	}
}

func TestPollResult_Block(t *testing.T) {
	cfg := testConfig()
	cfg.Reads = []ReadBlock{{FC: 4, Address: 10, Quantity: 4}}

	p, err := New(cfg, &fakeClient{}, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	res := p.PollOnce()

	b, ok := res.Block(4, 12, 2)
	if !ok {
		t.Fatalf("expected block for 12..13")
	}
	if b.Registers[12-b.Address] != 12 {
		t.Fatalf("unexpected register value %d", b.Registers[2])
	}
	if _, ok := res.Block(4, 13, 2); ok {
		t.Fatalf("13..14 must not be covered")
	}
	if _, ok := res.Block(3, 10, 1); ok {
		t.Fatalf("fc mismatch must not match")
	}
}

func TestRun_EmitsAndStops(t *testing.T) {
	cfg := testConfig()
	cfg.Interval = 5 * time.Millisecond

	fc := &fakeClient{}
	p, err := New(cfg, fc, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan PollResult)
	done := make(chan struct{})

	go func() {
		p.Run(ctx, out)
		close(done)
	}()

	select {
	case res := <-out:
		if res.Err != nil {
			t.Fatalf("unexpected err %v", res.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no poll result emitted")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop")
	}
	if !fc.closed {
		t.Fatalf("client not closed on stop")
	}
}

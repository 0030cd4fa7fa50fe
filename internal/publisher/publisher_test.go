package publisher

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/modbus-paramhub/internal/appdata"
	cfg "github.com/tamzrod/modbus-paramhub/internal/config"
	"github.com/tamzrod/modbus-paramhub/internal/param"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func testHub(t *testing.T, opts ...param.Option) *appdata.Hub {
	t.Helper()

	h, err := appdata.Build(cfg.UnitConfig{
		ID: "boiler",
		Parameters: []cfg.ParameterConfig{
			{Name: "temp", FC: 4, Address: 2, Type: "int32"},
			{Name: "pump", FC: 1, Address: 5, Type: "bool"},
		},
	}, opts...)
	require.NoError(t, err)
	return h
}

func testPlan() Plan {
	return Plan{
		UnitID: "boiler",
		Targets: []TargetEndpoint{
			{
				TargetID: 7,
				Endpoint: "ep1",
				Memories: []MemoryDest{
					{MemoryID: 1, Offsets: map[int]uint16{1: 10, 4: 100}},
					{MemoryID: 2},
				},
			},
		},
	}
}

func setAll(t *testing.T, h *appdata.Hub, temp int32, pump bool) {
	t.Helper()
	p, ok := h.Table().Get("temp")
	require.True(t, ok)
	p.SetInt32(temp)
	p, ok = h.Table().Get("pump")
	require.True(t, ok)
	p.SetBool(pump)
}

func TestPublishPending_OffsetMathPerFC(t *testing.T) {
	fake := &fakeEndpointClient{}
	h := testHub(t)
	setAll(t, h, -2, true)

	pub := New(testPlan(), map[string]EndpointClient{"ep1": fake})
	rep := pub.PublishPending(h)

	require.NoError(t, rep.Err)
	assert.Equal(t, 2, rep.Published)
	require.Len(t, fake.writes, 4)

	// temp -> memory 1 (offset 100) and memory 2 (offset 0)
	assert.Equal(t, writeCall{area: 4, unitID: 7, addr: 102, regs: []uint16{0xFFFF, 0xFFFE}}, fake.writes[0])
	assert.Equal(t, uint16(2), fake.writes[1].addr)

	// pump -> coils at offset 10 and 0
	assert.Equal(t, writeCall{area: 1, unitID: 7, addr: 15, bits: []bool{true}}, fake.writes[2])
	assert.Equal(t, uint16(5), fake.writes[3].addr)

	assert.Empty(t, h.Pending())
	temp, _ := h.Table().Get("temp")
	assert.Equal(t, "-2", temp.LastPublished())
}

func TestPublishPending_OnlyChangedParameters(t *testing.T) {
	fake := &fakeEndpointClient{}
	h := testHub(t)
	pub := New(testPlan(), map[string]EndpointClient{"ep1": fake})

	setAll(t, h, 1, false)
	pub.PublishPending(h)
	fake.writes = nil

	setAll(t, h, 1, true)
	rep := pub.PublishPending(h)

	require.NoError(t, rep.Err)
	assert.Equal(t, 1, rep.Published)
	require.Len(t, fake.writes, 2)
	assert.NotNil(t, fake.writes[0].bits)
}

func TestPublishPending_FailureCountsAndTimesOut(t *testing.T) {
	clk := &clock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	fake := &fakeEndpointClient{fail: true}
	logger := &captureLogger{}

	h := testHub(t, param.WithClock(clk.now))
	plan := testPlan()
	plan.Policy = Policy{Timeout: 10 * time.Second}
	pub := New(plan, map[string]EndpointClient{"ep1": fake}, WithClock(clk.now), WithLogger(logger))

	setAll(t, h, 5, true)

	rep := pub.PublishPending(h)
	require.Error(t, rep.Err)
	assert.Equal(t, 2, rep.Failed)
	assert.Equal(t, 0, rep.Dropped)

	temp, _ := h.Table().Get("temp")
	assert.Equal(t, 1, temp.PubErrs())
	assert.Equal(t, clk.t, temp.PubInitAt())
	assert.True(t, temp.IsPub())

	clk.t = clk.t.Add(5 * time.Second)
	rep = pub.PublishPending(h)
	assert.Equal(t, 0, rep.Dropped)
	assert.Equal(t, 2, temp.PubErrs())

	clk.t = clk.t.Add(5 * time.Second)
	rep = pub.PublishPending(h)
	assert.Equal(t, 2, rep.Dropped)
	assert.False(t, temp.IsPub())
	assert.True(t, temp.PubInitAt().IsZero())
	require.Len(t, logger.lines, 2)
	assert.True(t, strings.Contains(logger.lines[0], "param=temp"))
}

func TestPublishPending_ErrorBudget(t *testing.T) {
	fake := &fakeEndpointClient{fail: true}
	h := testHub(t)
	plan := testPlan()
	plan.Policy = Policy{MaxErrors: 2}
	pub := New(plan, map[string]EndpointClient{"ep1": fake})

	setAll(t, h, 5, true)

	assert.Equal(t, 0, pub.PublishPending(h).Dropped)
	assert.Equal(t, 2, pub.PublishPending(h).Dropped)
	assert.Empty(t, h.Pending())

	// next change opens a fresh cycle
	fake.fail = false
	setAll(t, h, 6, false)
	rep := pub.PublishPending(h)
	require.NoError(t, rep.Err)
	assert.Equal(t, 2, rep.Published)
}

func TestPublishPending_MissingClient(t *testing.T) {
	h := testHub(t)
	setAll(t, h, 5, true)

	rep := New(testPlan(), map[string]EndpointClient{}).PublishPending(h)
	require.Error(t, rep.Err)
	assert.Contains(t, rep.Err.Error(), "missing client")
	assert.Len(t, h.Pending(), 2)
}

func TestPublishPending_OnceParameterUnsets(t *testing.T) {
	fake := &fakeEndpointClient{}
	h := testHub(t)
	temp, _ := h.Table().Get("temp")
	temp.Once()
	temp.SetInt32(3)

	rep := New(testPlan(), map[string]EndpointClient{"ep1": fake}).PublishPending(h)
	require.NoError(t, rep.Err)
	assert.False(t, temp.IsSet())
	assert.Equal(t, "3", temp.LastPublished())
}

func TestOffsetForFC_DefaultZero(t *testing.T) {
	assert.Equal(t, uint16(0), offsetForFC(nil, 3))
	assert.Equal(t, uint16(0), offsetForFC(map[int]uint16{4: 9}, 3))
	assert.Equal(t, uint16(9), offsetForFC(map[int]uint16{4: 9}, 4))
}

package metrics

import (
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-mquic/config"
	"github.com/dep2p/go-mquic/internal/core/wire"
)

func TestPrometheusCollector_Totals(t *testing.T) {
	c := NewCollector(clock.NewMock())
	p, f, n := dataPacket(wire.FlagLastOfStream, frame(1, 0, 10))
	c.Observe(p, f, n)
	c.Drop()
	c.End()

	pc := NewPrometheusCollector("mquic", c)
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(pc))

	expected := `
# HELP mquic_received_packets_total Data packets received.
# TYPE mquic_received_packets_total counter
mquic_received_packets_total 1
# HELP mquic_dropped_datagrams_total Datagrams dropped by the receiver.
# TYPE mquic_dropped_datagrams_total counter
mquic_dropped_datagrams_total 1
# HELP mquic_rounds_total Completed receive rounds.
# TYPE mquic_rounds_total counter
mquic_rounds_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"mquic_received_packets_total", "mquic_dropped_datagrams_total", "mquic_rounds_total"))

	// 流 1 与汇总各一组 gauge
	assert.Equal(t, 2, testutil.CollectAndCount(pc, "mquic_stream_packets"))
}

func TestModule_RegistersPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	var c *Collector

	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		fx.Provide(func() prometheus.Registerer { return reg }),
		Module,
		fx.Populate(&c),
	)
	app.RequireStart()
	require.NotNil(t, c)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	app.RequireStop()
	families, err = reg.Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}

func TestModule_WithoutRegisterer(t *testing.T) {
	var c *Collector
	app := fxtest.New(t, Module, fx.Populate(&c))
	defer app.RequireStart().RequireStop()
	assert.NotNil(t, c)
}

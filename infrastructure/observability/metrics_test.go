package observability

import (
	"context"
	"testing"

	"elaina/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true

	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.InitializeWithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = m.Data
		}
	}
	return found
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetricsProvider_Disabled(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = false

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))

	assert.False(t, mp.isEnabled())
	// recording without instruments is a no-op
	mp.RecordGameSettled("coinflip", "win", 100, 200)
	mp.RecordCommand("ping")
	assert.NoError(t, mp.ObserveActiveSessions(func() int { return 1 }))
}

func TestMetricsProvider_ExporterNone(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = ExporterNone

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	assert.False(t, mp.isEnabled())
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "carrier-pigeon"

	mp := NewMetricsProvider(cfg)
	assert.Error(t, mp.Initialize(context.Background()))
}

func TestMetricsProvider_RecordGameSettled(t *testing.T) {
	mp, reader := newTestProvider(t)

	mp.RecordGameSettled("blackjack", "win", 500, 1000)
	mp.RecordGameSettled("blackjack", "bust", 300, 0)
	mp.RecordGameSettled("coinflip", "loss", 200, 0)

	found := collect(t, reader)
	assert.Equal(t, int64(3), sumOf(t, found[GamesSettledTotal]))
	assert.Equal(t, int64(1000), sumOf(t, found[GameWageredTotal]))
	assert.Equal(t, int64(1000), sumOf(t, found[GamePayoutTotal]))
}

func TestMetricsProvider_Counters(t *testing.T) {
	mp, reader := newTestProvider(t)

	mp.RecordCommand("blackjack")
	mp.RecordCommand("ping")
	mp.RecordModerationAction("ban")
	mp.RecordNATSMessagePublished("game_settled")
	mp.RecordBalanceTransaction("transfer_in")

	found := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, found[CommandsTotal]))
	assert.Equal(t, int64(1), sumOf(t, found[ModerationActionsTotal]))
	assert.Equal(t, int64(1), sumOf(t, found[NATSMessagesPublishedTotal]))
	assert.Equal(t, int64(1), sumOf(t, found[BalanceTransactionsTotal]))
}

func TestMetricsProvider_ObserveActiveSessions(t *testing.T) {
	mp, reader := newTestProvider(t)

	active := 3
	require.NoError(t, mp.ObserveActiveSessions(func() int { return active }))

	found := collect(t, reader)
	gauge, ok := found[BlackjackActive].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(3), gauge.DataPoints[0].Value)

	active = 1
	found = collect(t, reader)
	gauge = found[BlackjackActive].(metricdata.Gauge[int64])
	assert.Equal(t, int64(1), gauge.DataPoints[0].Value)
}

func TestMetricsProvider_ObserveOpenRounds(t *testing.T) {
	mp, reader := newTestProvider(t)

	require.NoError(t, mp.ObserveOpenRounds(func() int { return 2 }))

	found := collect(t, reader)
	gauge, ok := found[BauCuaOpen].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(2), gauge.DataPoints[0].Value)
}

func TestMetricsProvider_NilSafe(t *testing.T) {
	var mp *MetricsProvider
	assert.NotPanics(t, func() {
		mp.RecordCommand("ping")
		mp.RecordNATSMessagePublished("user_created")
	})
}

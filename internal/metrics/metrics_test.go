package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Merges.WithLabelValues("ok").Inc()
	m.PointsAwarded.Add(10)
	m.RealtimeSessions.Set(2)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["sync_merges_total"])
	assert.True(t, names["sync_points_awarded_total"])
	assert.True(t, names["realtime_sessions"])
	assert.Equal(t, float64(10), testutil.ToFloat64(m.PointsAwarded))
}

func TestNew_TwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}

func TestNew_NilRegisterer(t *testing.T) {
	m := New(nil)
	assert.NotNil(t, m.HTTPRequests)
}

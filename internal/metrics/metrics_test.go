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

	m.ObserveRedirect(true)
	m.ObserveRedirect(true)
	m.ObserveRedirect(false)
	m.ClicksRecorded.Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Redirects.WithLabelValues(ResultHit)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Redirects.WithLabelValues(ResultMiss)))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, family := range families {
		names[family.GetName()] = true
	}
	assert.True(t, names["golinks_redirects_total"])
	assert.True(t, names["golinks_clicks_recorded_total"])
}

func TestNew_NilRegisterer(t *testing.T) {
	m := New(nil)
	assert.NotPanics(t, func() {
		m.ObserveMutation("add", nil)
	})
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Mutations.WithLabelValues("add", ResultSuccess)))
}

func TestObserveMutation_Error(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveMutation("delete", assert.AnError)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Mutations.WithLabelValues("delete", ResultError)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Mutations.WithLabelValues("delete", ResultSuccess)))
}

func TestNew_TwoInstancesSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

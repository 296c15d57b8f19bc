package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementLinkRendered()
	m.IncrementLinkRendered()
	m.ObserveFragment(OutcomeCaptured)
	m.ObserveFragment(OutcomeNoToken)
	m.ObserveFragment(OutcomeNoToken)
	m.ObserveProfileLookup(OutcomeProfileDenied)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LinksRendered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FragmentObservations.WithLabelValues(OutcomeCaptured)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FragmentObservations.WithLabelValues(OutcomeNoToken)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProfileLookups.WithLabelValues(OutcomeProfileDenied)))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

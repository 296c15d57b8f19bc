package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fragment observation outcomes
const (
	OutcomeCaptured      = "captured"
	OutcomeNoToken       = "no_token"
	OutcomeInvalidURL    = "invalid_url"
	OutcomeProfileOK     = "ok"
	OutcomeProfileDenied = "unauthorized"
	OutcomeProfileFailed = "error"
)

// Metrics tracks the login flow as seen by the front end.
type Metrics struct {
	LinksRendered        prometheus.Counter
	FragmentObservations *prometheus.CounterVec
	ProfileLookups       *prometheus.CounterVec
}

// New registers the login flow metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LinksRendered: factory.NewCounter(prometheus.CounterOpts{
			Name: "webex_implicit_login_links_rendered_total",
			Help: "Total number of login links handed to a browser",
		}),
		FragmentObservations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webex_implicit_fragment_observations_total",
			Help: "Total number of redirect fragments inspected, by outcome",
		}, []string{"outcome"}),
		ProfileLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webex_implicit_profile_lookups_total",
			Help: "Total number of Webex profile lookups, by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementLinkRendered records a login link handed out.
func (m *Metrics) IncrementLinkRendered() {
	m.LinksRendered.Inc()
}

// ObserveFragment records one extractor run.
func (m *Metrics) ObserveFragment(outcome string) {
	m.FragmentObservations.WithLabelValues(outcome).Inc()
}

// ObserveProfileLookup records one people/me call.
func (m *Metrics) ObserveProfileLookup(outcome string) {
	m.ProfileLookups.WithLabelValues(outcome).Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	HTTPRequestDuration *prometheus.HistogramVec
	PeopleCreated       prometheus.Counter
	PeopleSynced        *prometheus.CounterVec
	CampaignsRecorded   prometheus.Counter
	CampaignRecipients  prometheus.Counter
	LoginAttempts       *prometheus.CounterVec
	NotifyFailures      *prometheus.CounterVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civic_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
		PeopleCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "civic_people_created_total",
			Help: "Total number of person records created",
		}),
		PeopleSynced: f.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_people_sync_records_total",
			Help: "Bulk import records by outcome (synced, skipped, error)",
		}, []string{"outcome"}),
		CampaignsRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "civic_campaigns_recorded_total",
			Help: "Total number of campaign sends recorded",
		}),
		CampaignRecipients: f.NewCounter(prometheus.CounterOpts{
			Name: "civic_campaign_recipients_total",
			Help: "Total number of recipients across recorded campaigns",
		}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_login_attempts_total",
			Help: "Login attempts by result (success, failure, locked)",
		}, []string{"result"}),
		NotifyFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_campaign_notify_failures_total",
			Help: "Failed campaign notifications by notifier",
		}, []string{"notifier"}),
	}
}

// ObserveHTTP records one request. Call with time.Now() taken at the start.
func (m *Metrics) ObserveHTTP(method, route, status string, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncPeopleCreated() {
	if m == nil {
		return
	}
	m.PeopleCreated.Inc()
}

// AddSync records a finished bulk import.
func (m *Metrics) AddSync(synced, skipped, failed int) {
	if m == nil {
		return
	}
	m.PeopleSynced.WithLabelValues("synced").Add(float64(synced))
	m.PeopleSynced.WithLabelValues("skipped").Add(float64(skipped))
	m.PeopleSynced.WithLabelValues("error").Add(float64(failed))
}

// IncCampaign records a campaign and its recipient count.
func (m *Metrics) IncCampaign(recipients int) {
	if m == nil {
		return
	}
	m.CampaignsRecorded.Inc()
	m.CampaignRecipients.Add(float64(recipients))
}

func (m *Metrics) IncLogin(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) IncNotifyFailure(notifier string) {
	if m == nil {
		return
	}
	m.NotifyFailures.WithLabelValues(notifier).Inc()
}

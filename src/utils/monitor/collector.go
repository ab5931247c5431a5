package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// State
	CyclesFinished            *prometheus.Desc
	ApiValuesFetched          *prometheus.Desc
	ProvidersInitialized      *prometheus.Desc
	PspSubscriptionsProcessed *prometheus.Desc
	PspBeaconsUpdated         *prometheus.Desc
	RrpBeaconsUpdated         *prometheus.Desc
	ConditionsNotMet          *prometheus.Desc
	DuplicatesSkipped         *prometheus.Desc
	ValidationSkips           *prometheus.Desc

	// Errors
	CycleFailures      *prometheus.Desc
	ApiCallFailures    *prometheus.Desc
	ProviderFailures   *prometheus.Desc
	ConditionFailures  *prometheus.Desc
	NonceFetchFailures *prometheus.Desc
	SubmissionFailures *prometheus.Desc
}

func NewCollector() *Collector {
	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, nil),

		// State
		CyclesFinished:            prometheus.NewDesc("cycles_finished", "", nil, nil),
		ApiValuesFetched:          prometheus.NewDesc("api_values_fetched", "", nil, nil),
		ProvidersInitialized:      prometheus.NewDesc("providers_initialized", "", nil, nil),
		PspSubscriptionsProcessed: prometheus.NewDesc("psp_subscriptions_processed", "", nil, nil),
		PspBeaconsUpdated:         prometheus.NewDesc("psp_beacons_updated", "", nil, nil),
		RrpBeaconsUpdated:         prometheus.NewDesc("rrp_beacons_updated", "", nil, nil),
		ConditionsNotMet:          prometheus.NewDesc("conditions_not_met", "", nil, nil),
		DuplicatesSkipped:         prometheus.NewDesc("duplicates_skipped", "", nil, nil),
		ValidationSkips:           prometheus.NewDesc("validation_skips", "", nil, nil),

		// Errors
		CycleFailures:      prometheus.NewDesc("cycle_failures", "", nil, nil),
		ApiCallFailures:    prometheus.NewDesc("api_call_failures", "", nil, nil),
		ProviderFailures:   prometheus.NewDesc("provider_failures", "", nil, nil),
		ConditionFailures:  prometheus.NewDesc("condition_failures", "", nil, nil),
		NonceFetchFailures: prometheus.NewDesc("nonce_fetch_failures", "", nil, nil),
		SubmissionFailures: prometheus.NewDesc("submission_failures", "", nil, nil),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.UpForSeconds

	// State
	ch <- self.CyclesFinished
	ch <- self.ApiValuesFetched
	ch <- self.ProvidersInitialized
	ch <- self.PspSubscriptionsProcessed
	ch <- self.PspBeaconsUpdated
	ch <- self.RrpBeaconsUpdated
	ch <- self.ConditionsNotMet
	ch <- self.DuplicatesSkipped
	ch <- self.ValidationSkips

	// Errors
	ch <- self.CycleFailures
	ch <- self.ApiCallFailures
	ch <- self.ProviderFailures
	ch <- self.ConditionFailures
	ch <- self.NonceFetchFailures
	ch <- self.SubmissionFailures
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	self.monitor.Report.Fill()

	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(self.monitor.Report.Run.UpForSeconds.Load()))

	// State
	ch <- prometheus.MustNewConstMetric(self.CyclesFinished, prometheus.CounterValue, float64(self.monitor.Report.State.CyclesFinished.Load()))
	ch <- prometheus.MustNewConstMetric(self.ApiValuesFetched, prometheus.CounterValue, float64(self.monitor.Report.State.ApiValuesFetched.Load()))
	ch <- prometheus.MustNewConstMetric(self.ProvidersInitialized, prometheus.CounterValue, float64(self.monitor.Report.State.ProvidersInitialized.Load()))
	ch <- prometheus.MustNewConstMetric(self.PspSubscriptionsProcessed, prometheus.CounterValue, float64(self.monitor.Report.State.PspSubscriptionsProcessed.Load()))
	ch <- prometheus.MustNewConstMetric(self.PspBeaconsUpdated, prometheus.CounterValue, float64(self.monitor.Report.State.PspBeaconsUpdated.Load()))
	ch <- prometheus.MustNewConstMetric(self.RrpBeaconsUpdated, prometheus.CounterValue, float64(self.monitor.Report.State.RrpBeaconsUpdated.Load()))
	ch <- prometheus.MustNewConstMetric(self.ConditionsNotMet, prometheus.CounterValue, float64(self.monitor.Report.State.ConditionsNotMet.Load()))
	ch <- prometheus.MustNewConstMetric(self.DuplicatesSkipped, prometheus.CounterValue, float64(self.monitor.Report.State.DuplicatesSkipped.Load()))
	ch <- prometheus.MustNewConstMetric(self.ValidationSkips, prometheus.CounterValue, float64(self.monitor.Report.State.ValidationSkips.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.CycleFailures, prometheus.CounterValue, float64(self.monitor.Report.Errors.CycleFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ApiCallFailures, prometheus.CounterValue, float64(self.monitor.Report.Errors.ApiCallFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ProviderFailures, prometheus.CounterValue, float64(self.monitor.Report.Errors.ProviderFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ConditionFailures, prometheus.CounterValue, float64(self.monitor.Report.Errors.ConditionFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.NonceFetchFailures, prometheus.CounterValue, float64(self.monitor.Report.Errors.NonceFetchFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.SubmissionFailures, prometheus.CounterValue, float64(self.monitor.Report.Errors.SubmissionFailures.Load()))
}

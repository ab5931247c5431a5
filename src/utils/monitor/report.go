package monitor

import (
	"time"

	"go.uber.org/atomic"
)

type RunReport struct {
	StartTimestamp atomic.Int64 `json:"start_timestamp"`
	UpForSeconds   atomic.Int64 `json:"up_for_seconds"`
}

type KeeperState struct {
	CyclesFinished            atomic.Uint64 `json:"cycles_finished"`
	ApiValuesFetched          atomic.Uint64 `json:"api_values_fetched"`
	ProvidersInitialized      atomic.Uint64 `json:"providers_initialized"`
	PspSubscriptionsProcessed atomic.Uint64 `json:"psp_subscriptions_processed"`
	PspBeaconsUpdated         atomic.Uint64 `json:"psp_beacons_updated"`
	RrpBeaconsUpdated         atomic.Uint64 `json:"rrp_beacons_updated"`
	ConditionsNotMet          atomic.Uint64 `json:"conditions_not_met"`
	DuplicatesSkipped         atomic.Uint64 `json:"duplicates_skipped"`
	ValidationSkips           atomic.Uint64 `json:"validation_skips"`
}

type KeeperErrors struct {
	CycleFailures      atomic.Uint64 `json:"cycle_failures"`
	ApiCallFailures    atomic.Uint64 `json:"api_call_failures"`
	ProviderFailures   atomic.Uint64 `json:"provider_failures"`
	ConditionFailures  atomic.Uint64 `json:"condition_failures"`
	NonceFetchFailures atomic.Uint64 `json:"nonce_fetch_failures"`
	SubmissionFailures atomic.Uint64 `json:"submission_failures"`
}

type Report struct {
	Run    RunReport    `json:"run"`
	State  KeeperState  `json:"state"`
	Errors KeeperErrors `json:"errors"`
}

func (self *Report) Fill() {
	self.Run.UpForSeconds.Store(time.Now().Unix() - self.Run.StartTimestamp.Load())
}

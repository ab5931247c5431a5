package keeper

import (
	"context"
	"math/big"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/api3dao/airkeeper/src/adapter"
	"github.com/api3dao/airkeeper/src/utils/config"
	"github.com/api3dao/airkeeper/src/utils/logger"
	"github.com/api3dao/airkeeper/src/utils/monitor"
	"github.com/api3dao/airkeeper/src/utils/task"
	"github.com/api3dao/airkeeper/src/utils/wallet"
)

// ApiClient is the narrow surface of the HTTP adapter the cycle consumes
type ApiClient interface {
	Call(ctx context.Context, request adapter.Request) (value *big.Int, err error)
}

// Coordinator runs one update cycle: resolve triggers, call APIs,
// initialize providers, submit updates. It owns all cycle state and
// nothing survives it.
type Coordinator struct {
	config  *config.Config
	merged  *config.Merged
	deriver *wallet.Deriver
	airnode *wallet.Wallet
	api     ApiClient
	monitor *monitor.Monitor
	log     *logrus.Entry
}

func NewCoordinator(config *config.Config, merged *config.Merged) (self *Coordinator, err error) {
	self = new(Coordinator)
	self.config = config
	self.merged = merged
	self.log = logger.NewSublogger("coordinator").WithField("cycle", xid.New().String())

	self.deriver, err = wallet.NewDeriver(merged.Mnemonic)
	if err != nil {
		return
	}

	self.airnode, err = self.deriver.Airnode()
	if err != nil {
		return
	}

	self.api = adapter.NewClient()
	self.monitor = monitor.NewMonitor()
	return
}

func (self *Coordinator) WithApiClient(api ApiClient) *Coordinator {
	self.api = api
	return self
}

func (self *Coordinator) WithMonitor(monitor *monitor.Monitor) *Coordinator {
	self.monitor = monitor
	return self
}

// retry builds the combinator every external call goes through
func (self *Coordinator) retry(ctx context.Context) *task.Retry {
	return task.NewRetry().
		WithContext(ctx).
		WithMaxAttempts(self.config.Keeper.MaxAttempts).
		WithInitialInterval(self.config.Keeper.RetryInterval).
		WithMaxInterval(self.config.Keeper.RetryMaxInterval).
		WithAttemptTimeout(self.config.Keeper.AttemptTimeout)
}

// RunPsp executes the PSP update cycle
func (self *Coordinator) RunPsp(ctx context.Context) (err error) {
	// Phase one: load and validate triggers
	groups := self.resolvePspTriggers()
	self.log.WithField("groups", len(groups)).Info("Resolved PSP triggers")
	if len(groups) == 0 {
		return nil
	}

	// Phase two: call APIs, one call per template
	apiValues := self.callPspApis(ctx, groups)
	if len(apiValues) == 0 {
		self.log.Warn("No API value could be fetched, nothing to submit")
		return nil
	}

	// Phase three: initialize providers
	providers := self.initializeProviders(ctx)
	if len(providers) == 0 {
		self.log.Warn("No provider could be initialized, nothing to submit")
		return nil
	}

	// Phase four: check conditions and submit updates
	self.submitPspUpdates(ctx, providers, groups, apiValues)

	self.monitor.GetReport().State.CyclesFinished.Inc()
	return nil
}

// RunRrp executes the RRP beacon keeper cycle
func (self *Coordinator) RunRrp(ctx context.Context) (err error) {
	jobs := self.resolveRrpTriggers()
	self.log.WithField("jobs", len(jobs)).Info("Resolved RRP keeper jobs")
	if len(jobs) == 0 {
		return nil
	}

	apiValues := self.callRrpApis(ctx, jobs)
	if len(apiValues) == 0 {
		self.log.Warn("No API value could be fetched, nothing to submit")
		return nil
	}

	providers := self.initializeProviders(ctx)
	if len(providers) == 0 {
		self.log.Warn("No provider could be initialized, nothing to submit")
		return nil
	}

	self.submitRrpUpdates(ctx, providers, jobs, apiValues)

	self.monitor.GetReport().State.CyclesFinished.Inc()
	return nil
}

package keeper

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gammazero/workerpool"

	"github.com/api3dao/airkeeper/src/adapter"
	"github.com/api3dao/airkeeper/src/utils/config"
	"github.com/api3dao/airkeeper/src/utils/protocol"
)

// callPspApis resolves every template to a value and distributes it to all
// subscriptions sharing the template. Work units run concurrently and fail
// independently.
func (self *Coordinator) callPspApis(ctx context.Context, groups []*GroupedSubscriptions) (apiValues map[common.Hash]*big.Int) {
	apiValues = map[common.Hash]*big.Int{}

	var mtx sync.Mutex
	pool := workerpool.New(self.config.Keeper.MaxWorkers)

	for _, group := range groups {
		group := group
		pool.Submit(func() {
			value, err := self.callApi(ctx, group.Endpoint, group.TemplateParameters)
			if err != nil {
				self.log.WithError(err).WithField("templateId", group.TemplateID.Hex()).
					Warn("API call failed, dropping its subscriptions")
				self.monitor.GetReport().Errors.ApiCallFailures.Inc()
				return
			}

			self.monitor.GetReport().State.ApiValuesFetched.Inc()

			mtx.Lock()
			for _, subscription := range group.Subscriptions {
				apiValues[subscription.ID] = value
			}
			mtx.Unlock()
		})
	}

	pool.StopWait()
	return
}

// callRrpApis does the same per keeper job, keyed by beacon id
func (self *Coordinator) callRrpApis(ctx context.Context, jobs []*RrpJob) (apiValues map[common.Hash]*big.Int) {
	apiValues = map[common.Hash]*big.Int{}

	var mtx sync.Mutex
	pool := workerpool.New(self.config.Keeper.MaxWorkers)

	for _, job := range jobs {
		job := job
		pool.Submit(func() {
			value, err := self.callApi(ctx, job.Endpoint, job.TemplateParameters)
			if err != nil {
				self.log.WithError(err).WithField("beaconId", job.BeaconID.Hex()).
					Warn("API call failed, dropping keeper job")
				self.monitor.GetReport().Errors.ApiCallFailures.Inc()
				return
			}

			self.monitor.GetReport().State.ApiValuesFetched.Inc()

			mtx.Lock()
			apiValues[job.BeaconID] = value
			mtx.Unlock()
		})
	}

	pool.StopWait()
	return
}

// callApi performs one adapter request with bounded retry
func (self *Coordinator) callApi(ctx context.Context, endpoint config.Endpoint, templateParameters []byte) (value *big.Int, err error) {
	ois, err := self.findOis(endpoint.OisTitle)
	if err != nil {
		return
	}

	parameters, err := protocol.DecodeParameters(templateParameters)
	if err != nil {
		return
	}

	request := adapter.Request{
		OIS:          ois,
		EndpointName: endpoint.EndpointName,
		Parameters:   parameters,
		Credentials:  self.merged.APICredentials,
	}

	err = self.retry(ctx).
		WithOnError(func(err error) {
			self.log.WithError(err).WithField("endpoint", endpoint.EndpointName).Warn("API call attempt failed, retrying")
		}).
		Run(func(ctx context.Context) error {
			var callErr error
			value, callErr = self.api.Call(ctx, request)
			return callErr
		})
	return
}

func (self *Coordinator) findOis(title string) (ois config.OIS, err error) {
	for _, candidate := range self.merged.OIS {
		if candidate.Title == title {
			return candidate, nil
		}
	}
	err = fmt.Errorf("no OIS titled %q", title)
	return
}

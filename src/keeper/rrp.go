package keeper

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/gammazero/workerpool"

	"github.com/api3dao/airkeeper/src/utils/protocol"
	"github.com/api3dao/airkeeper/src/utils/wallet"
)

// submitRrpUpdates runs phase four of the RRP keeper cycle. Keeper
// sponsors fan out per provider, jobs of one sponsor stay sequential.
func (self *Coordinator) submitRrpUpdates(ctx context.Context, providers []*ProviderState, jobs []*RrpJob, apiValues map[common.Hash]*big.Int) {
	pool := workerpool.New(self.config.Keeper.MaxWorkers)

	for _, provider := range providers {
		provider := provider

		var relevant []*RrpJob
		for _, job := range jobs {
			if !job.RunsOnChain(provider.Chain.ID) {
				continue
			}
			if _, ok := apiValues[job.BeaconID]; !ok {
				continue
			}
			relevant = append(relevant, job)
		}

		sponsors := []common.Address{}
		grouped := map[common.Address][]*RrpJob{}
		for _, job := range relevant {
			if _, ok := grouped[job.KeeperSponsor]; !ok {
				sponsors = append(sponsors, job.KeeperSponsor)
			}
			grouped[job.KeeperSponsor] = append(grouped[job.KeeperSponsor], job)
		}

		for _, sponsor := range sponsors {
			sponsor := sponsor
			sponsorJobs := grouped[sponsor]
			pool.Submit(func() {
				self.processRrpSponsor(ctx, provider, sponsor, sponsorJobs, apiValues)
			})
		}
	}

	pool.StopWait()

	for _, provider := range providers {
		provider.Client.Close()
	}
}

func (self *RrpJob) RunsOnChain(chainID string) bool {
	if len(self.ChainIds) == 0 {
		return true
	}
	for _, id := range self.ChainIds {
		if id == chainID {
			return true
		}
	}
	return false
}

func (self *Coordinator) processRrpSponsor(ctx context.Context, provider *ProviderState, keeperSponsor common.Address, jobs []*RrpJob, apiValues map[common.Hash]*big.Int) {
	log := self.log.
		WithField("chainId", provider.Chain.ID).
		WithField("provider", provider.ProviderName).
		WithField("keeperSponsor", keeperSponsor.Hex())

	keeperWallet, err := self.deriver.SponsorWallet(wallet.ProtocolIDRrpKeeper, keeperSponsor)
	if err != nil {
		log.WithError(err).Error("Failed to derive keeper sponsor wallet, dropping sponsor")
		self.monitor.GetReport().Errors.NonceFetchFailures.Inc()
		return
	}

	// Beacon reads, the deviation check and duplicate suppression are all
	// read-only and consume no nonce
	var survivors []*RrpJob
	for _, job := range jobs {
		jobLog := log.WithField("beaconId", job.BeaconID.Hex())

		beacon, err := self.readBeacon(ctx, provider, job.BeaconID)
		if err != nil {
			jobLog.WithError(err).Error("Beacon read failed, skipping keeper job")
			self.monitor.GetReport().Errors.ConditionFailures.Inc()
			continue
		}

		if !DeviationExceeds(beacon, apiValues[job.BeaconID], job.DeviationThreshold) {
			jobLog.Debug("Deviation under threshold, nothing to update")
			self.monitor.GetReport().State.ConditionsNotMet.Inc()
			continue
		}

		pending, err := self.isUpdateAlreadyRequested(ctx, provider, job, keeperWallet.Address)
		if err != nil {
			jobLog.WithError(err).Error("Pending request lookup failed, skipping keeper job")
			self.monitor.GetReport().Errors.ConditionFailures.Inc()
			continue
		}
		if pending {
			jobLog.Warn("A beacon update request is already awaiting fulfillment, skipping")
			self.monitor.GetReport().State.DuplicatesSkipped.Inc()
			continue
		}

		survivors = append(survivors, job)
	}
	if len(survivors) == 0 {
		return
	}

	nonce, err := self.fetchNonce(ctx, provider, keeperWallet)
	if err != nil {
		log.WithError(err).Error("Failed to fetch nonce, dropping sponsor")
		self.monitor.GetReport().Errors.NonceFetchFailures.Inc()
		return
	}

	beaconServer := provider.Contracts[protocol.ContractRrpBeaconServer]

	for _, job := range survivors {
		jobLog := log.WithField("beaconId", job.BeaconID.Hex()).WithField("nonce", nonce)

		requestSponsorWallet, err := self.deriver.SponsorWallet(wallet.ProtocolIDRrp, job.RequestSponsor)
		if err != nil {
			jobLog.WithError(err).Error("Failed to derive request sponsor wallet")
			self.monitor.GetReport().Errors.SubmissionFailures.Inc()
			nonce++
			continue
		}

		calldata, err := protocol.RrpBeaconServerABI.Pack(
			"requestBeaconUpdate",
			[32]byte(job.TemplateID),
			job.RequestSponsor,
			requestSponsorWallet.Address,
			job.TemplateParameters,
		)
		if err != nil {
			jobLog.WithError(err).Error("Failed to encode beacon update request")
			self.monitor.GetReport().Errors.SubmissionFailures.Inc()
			nonce++
			continue
		}

		err = self.submitTransaction(ctx, provider, keeperWallet, beaconServer, calldata, nonce)
		if err != nil {
			jobLog.WithError(err).Error("Failed to submit beacon update request")
			self.monitor.GetReport().Errors.SubmissionFailures.Inc()
			// The nonce slot is consumed either way, the next invocation
			// re-reads the pending count
			nonce++
			continue
		}

		jobLog.Info("Beacon update requested")
		self.monitor.GetReport().State.RrpBeaconsUpdated.Inc()
		nonce++
	}
}

// isUpdateAlreadyRequested scans recent RequestedBeaconUpdate events for
// ones without a matching UpdatedBeacon and asks AirnodeRrp whether any of
// those requests is still awaiting fulfillment
func (self *Coordinator) isUpdateAlreadyRequested(ctx context.Context, provider *ProviderState, job *RrpJob, keeperSponsorWallet common.Address) (pending bool, err error) {
	beaconServer, ok := provider.Contracts[protocol.ContractRrpBeaconServer]
	if !ok {
		err = fmt.Errorf("chain %s has no RrpBeaconServer contract", provider.Chain.ID)
		return
	}
	airnodeRrp, ok := provider.Contracts[protocol.ContractAirnodeRrp]
	if !ok {
		err = fmt.Errorf("chain %s has no AirnodeRrp contract", provider.Chain.ID)
		return
	}

	fromBlock := provider.CurrentBlock - provider.BlockHistoryLimit
	if fromBlock < 0 {
		fromBlock = 0
	}

	requestedTopic := protocol.RrpBeaconServerABI.Events["RequestedBeaconUpdate"].ID
	updatedTopic := protocol.RrpBeaconServerABI.Events["UpdatedBeacon"].ID

	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(fromBlock),
		ToBlock:   big.NewInt(provider.CurrentBlock),
		Addresses: []common.Address{beaconServer},
		Topics: [][]common.Hash{
			{requestedTopic, updatedTopic},
			{job.BeaconID},
		},
	}

	var logs []ethtypes.Log
	err = self.retry(ctx).
		WithOnError(func(err error) {
			self.log.WithError(err).WithField("beaconId", job.BeaconID.Hex()).Warn("Event history attempt failed, retrying")
		}).
		Run(func(ctx context.Context) error {
			var filterErr error
			logs, filterErr = provider.Client.FilterLogs(ctx, query)
			return filterErr
		})
	if err != nil {
		return
	}

	// Match requests to updates by requestId, both carry it as the first
	// data word
	requested := map[common.Hash]bool{}
	fulfilled := map[common.Hash]bool{}
	for _, entry := range logs {
		if len(entry.Data) < 32 {
			continue
		}
		requestID := common.BytesToHash(entry.Data[:32])

		switch entry.Topics[0] {
		case requestedTopic:
			if len(entry.Topics) < 4 {
				continue
			}
			if common.BytesToAddress(entry.Topics[2].Bytes()) != job.RequestSponsor {
				continue
			}
			if common.BytesToAddress(entry.Topics[3].Bytes()) != keeperSponsorWallet {
				continue
			}
			requested[requestID] = true
		case updatedTopic:
			fulfilled[requestID] = true
		}
	}

	for requestID := range requested {
		if fulfilled[requestID] {
			continue
		}

		awaiting, checkErr := self.requestIsAwaitingFulfillment(ctx, provider, airnodeRrp, requestID)
		if checkErr != nil {
			return false, checkErr
		}
		if awaiting {
			return true, nil
		}
	}
	return false, nil
}

func (self *Coordinator) requestIsAwaitingFulfillment(ctx context.Context, provider *ProviderState, airnodeRrp common.Address, requestID common.Hash) (awaiting bool, err error) {
	calldata, err := protocol.AirnodeRrpABI.Pack("requestIsAwaitingFulfillment", [32]byte(requestID))
	if err != nil {
		return
	}

	msg := ethereum.CallMsg{
		From: common.Address{},
		To:   &airnodeRrp,
		Data: calldata,
	}

	var ret []byte
	err = self.retry(ctx).
		WithOnError(func(err error) {
			self.log.WithError(err).WithField("requestId", requestID.Hex()).Warn("Fulfillment check attempt failed, retrying")
		}).
		Run(func(ctx context.Context) error {
			var callErr error
			ret, callErr = provider.Client.CallContract(ctx, msg, big.NewInt(provider.CurrentBlock))
			return callErr
		})
	if err != nil {
		return
	}

	out, err := protocol.AirnodeRrpABI.Unpack("requestIsAwaitingFulfillment", ret)
	if err != nil {
		return
	}
	awaiting = out[0].(bool)
	return
}

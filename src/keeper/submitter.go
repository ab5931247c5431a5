package keeper

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gammazero/workerpool"

	"github.com/api3dao/airkeeper/src/utils/eth"
	"github.com/api3dao/airkeeper/src/utils/protocol"
	"github.com/api3dao/airkeeper/src/utils/wallet"
)

// submitPspUpdates runs phase four of the PSP cycle. Providers and
// sponsors fan out concurrently, one sponsor's subscriptions stay strictly
// sequential to keep nonces ordered.
func (self *Coordinator) submitPspUpdates(ctx context.Context, providers []*ProviderState, groups []*GroupedSubscriptions, apiValues map[common.Hash]*big.Int) {
	pool := workerpool.New(self.config.Keeper.MaxWorkers)

	for _, provider := range providers {
		provider := provider

		// Subscriptions of this provider's chain that have an API value
		var relevant []*Subscription
		for _, group := range groups {
			for _, subscription := range group.Subscriptions {
				if subscription.ChainID.String() != provider.Chain.ID {
					continue
				}
				if _, ok := apiValues[subscription.ID]; !ok {
					continue
				}
				relevant = append(relevant, subscription)
			}
		}

		sponsors, grouped := groupBySponsor(relevant)
		for _, sponsor := range sponsors {
			sponsor := sponsor
			subscriptions := grouped[sponsor]
			pool.Submit(func() {
				self.processPspSponsor(ctx, provider, sponsor, subscriptions, apiValues)
			})
		}
	}

	pool.StopWait()

	for _, provider := range providers {
		provider.Client.Close()
	}
}

func (self *Coordinator) processPspSponsor(ctx context.Context, provider *ProviderState, sponsor common.Address, subscriptions []*Subscription, apiValues map[common.Hash]*big.Int) {
	log := self.log.
		WithField("chainId", provider.Chain.ID).
		WithField("provider", provider.ProviderName).
		WithField("sponsor", sponsor.Hex())

	// Condition checks are read-only and consume no nonce
	var candidates []*CandidateUpdate
	for _, subscription := range subscriptions {
		self.monitor.GetReport().State.PspSubscriptionsProcessed.Inc()

		data, met, err := self.checkPspCondition(ctx, provider, subscription, apiValues[subscription.ID])
		if err != nil {
			log.WithError(err).WithField("subscriptionId", subscription.ID.Hex()).Error("Condition check failed, skipping subscription")
			self.monitor.GetReport().Errors.ConditionFailures.Inc()
			continue
		}
		if !met {
			log.WithField("subscriptionId", subscription.ID.Hex()).Debug("Deviation under threshold, nothing to update")
			self.monitor.GetReport().State.ConditionsNotMet.Inc()
			continue
		}

		candidates = append(candidates, &CandidateUpdate{
			Subscription: subscription,
			ApiValue:     apiValues[subscription.ID],
			Data:         data,
		})
	}
	if len(candidates) == 0 {
		return
	}

	sponsorWallet, err := self.deriver.SponsorWallet(wallet.ProtocolIDPsp, sponsor)
	if err != nil {
		log.WithError(err).Error("Failed to derive sponsor wallet, dropping sponsor")
		self.monitor.GetReport().Errors.NonceFetchFailures.Inc()
		return
	}

	nonce, err := self.fetchNonce(ctx, provider, sponsorWallet)
	if err != nil {
		log.WithError(err).Error("Failed to fetch nonce, dropping sponsor")
		self.monitor.GetReport().Errors.NonceFetchFailures.Inc()
		return
	}

	assignNonces(candidates, nonce)

	dapiServer := provider.Contracts[protocol.ContractDapiServer]

	for _, candidate := range candidates {
		subscription := candidate.Subscription
		timestamp := big.NewInt(time.Now().Unix())

		signature, err := protocol.SignPspFulfillment(self.airnode.PrivateKey, subscription.ID, timestamp, sponsorWallet.Address)
		if err != nil {
			log.WithError(err).WithField("subscriptionId", subscription.ID.Hex()).Error("Failed to sign fulfillment")
			self.monitor.GetReport().Errors.SubmissionFailures.Inc()
			// The nonce slot is consumed either way, the next invocation
			// re-reads the pending count
			continue
		}

		calldata, err := protocol.DapiServerABI.Pack(
			"fulfillPspBeaconUpdate",
			[32]byte(subscription.ID),
			self.airnode.Address,
			subscription.Relayer,
			subscription.Sponsor,
			timestamp,
			candidate.Data,
			signature,
		)
		if err != nil {
			log.WithError(err).WithField("subscriptionId", subscription.ID.Hex()).Error("Failed to encode fulfillment")
			self.monitor.GetReport().Errors.SubmissionFailures.Inc()
			continue
		}

		err = self.submitTransaction(ctx, provider, sponsorWallet, dapiServer, calldata, candidate.Nonce)
		if err != nil {
			log.WithError(err).
				WithField("subscriptionId", subscription.ID.Hex()).
				WithField("nonce", candidate.Nonce).
				Error("Failed to submit beacon update")
			self.monitor.GetReport().Errors.SubmissionFailures.Inc()
			continue
		}

		log.WithField("subscriptionId", subscription.ID.Hex()).WithField("nonce", candidate.Nonce).Info("Beacon update submitted")
		self.monitor.GetReport().State.PspBeaconsUpdated.Inc()
	}
}

// submitTransaction signs the update with the sponsor wallet and
// broadcasts it
func (self *Coordinator) submitTransaction(ctx context.Context, provider *ProviderState, sponsorWallet *wallet.Wallet, to common.Address, calldata []byte, nonce uint64) (err error) {
	tx := buildTransaction(provider, to, calldata, nonce, self.config.Keeper.GasLimit)

	signer := types.LatestSignerForChainID(provider.ChainID)
	signed, err := types.SignTx(tx, signer, sponsorWallet.PrivateKey)
	if err != nil {
		return
	}

	return self.retry(ctx).
		WithOnError(func(err error) {
			self.log.WithError(err).WithField("nonce", nonce).Warn("Transaction broadcast attempt failed, retrying")
		}).
		Run(func(ctx context.Context) error {
			return provider.Client.SendTransaction(ctx, signed)
		})
}

func buildTransaction(provider *ProviderState, to common.Address, calldata []byte, nonce uint64, gasLimit uint64) *types.Transaction {
	if provider.GasTarget.TxType == eth.TxTypeEip1559 {
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   provider.ChainID,
			Nonce:     nonce,
			GasTipCap: provider.GasTarget.MaxPriorityFeePerGas,
			GasFeeCap: provider.GasTarget.MaxFeePerGas,
			Gas:       gasLimit,
			To:        &to,
			Data:      calldata,
		})
	}

	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: provider.GasTarget.GasPrice,
		Gas:      gasLimit,
		To:       &to,
		Data:     calldata,
	})
}

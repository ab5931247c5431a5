package keeper

import (
	"context"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gammazero/workerpool"

	"github.com/api3dao/airkeeper/src/utils/config"
	"github.com/api3dao/airkeeper/src/utils/eth"
)

// initializeProviders builds the provider state of every (chain, provider)
// pair. Pairs run concurrently and a failing provider is dropped without
// touching the others.
func (self *Coordinator) initializeProviders(ctx context.Context) (providers []*ProviderState) {
	var mtx sync.Mutex
	pool := workerpool.New(self.config.Keeper.MaxWorkers)

	for _, chain := range self.merged.EvmChains() {
		chain := chain

		names := make([]string, 0, len(chain.Providers))
		for name := range chain.Providers {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			name := name
			url := chain.Providers[name].URL

			pool.Submit(func() {
				state, err := self.initializeProvider(ctx, chain, name, url)
				if err != nil {
					self.log.WithError(err).
						WithField("chainId", chain.ID).
						WithField("provider", name).
						Error("Failed to initialize provider, dropping it for this cycle")
					self.monitor.GetReport().Errors.ProviderFailures.Inc()
					return
				}

				self.monitor.GetReport().State.ProvidersInitialized.Inc()

				mtx.Lock()
				providers = append(providers, state)
				mtx.Unlock()
			})
		}
	}

	pool.StopWait()
	return
}

func (self *Coordinator) initializeProvider(ctx context.Context, chain config.Chain, name string, url string) (state *ProviderState, err error) {
	log := self.log.WithField("chainId", chain.ID).WithField("provider", name)

	chainID, ok := new(big.Int).SetString(chain.ID, 10)
	if !ok {
		err = config.ErrInvalidAirnodeConfig
		return
	}

	var client *eth.Client
	err = self.retry(ctx).
		WithOnError(func(err error) {
			log.WithError(err).Warn("Provider dial attempt failed, retrying")
		}).
		Run(func(ctx context.Context) error {
			var dialErr error
			client, dialErr = eth.Dial(ctx, log, url, chainID, self.config.Keeper.ProviderRequestsPerSecond)
			return dialErr
		})
	if err != nil {
		return
	}

	var currentBlock int64
	err = self.retry(ctx).
		WithOnError(func(err error) {
			log.WithError(err).Warn("Block fetch attempt failed, retrying")
		}).
		Run(func(ctx context.Context) error {
			header, blockErr := client.HeaderByNumber(ctx, nil)
			if blockErr != nil {
				return blockErr
			}
			currentBlock = header.Number.Int64()
			return nil
		})
	if err != nil {
		client.Close()
		return
	}

	priorityFee := big.NewInt(self.config.Keeper.PriorityFeeWei)
	if chain.Options.PriorityFee != nil {
		priorityFee, err = eth.PriorityFeeWei(chain.Options.PriorityFee.Value, chain.Options.PriorityFee.Unit)
		if err != nil {
			client.Close()
			return
		}
	}

	baseFeeMultiplier := self.config.Keeper.BaseFeeMultiplier
	if chain.Options.BaseFeeMultiplier != 0 {
		baseFeeMultiplier = chain.Options.BaseFeeMultiplier
	}

	txType := chain.Options.TxType
	if txType == "" {
		txType = eth.TxTypeEip1559
	}

	var gasTarget *eth.GasTarget
	err = self.retry(ctx).
		WithOnError(func(err error) {
			log.WithError(err).Warn("Gas target attempt failed, retrying")
		}).
		Run(func(ctx context.Context) error {
			var gasErr error
			gasTarget, gasErr = eth.FetchGasTarget(ctx, log, client, txType, baseFeeMultiplier, priorityFee)
			return gasErr
		})
	if err != nil {
		client.Close()
		return
	}

	contracts := make(map[string]common.Address, len(chain.Contracts))
	for contractName, address := range chain.Contracts {
		contracts[contractName] = common.HexToAddress(address)
	}

	blockHistoryLimit := self.config.Keeper.BlockHistoryLimit
	if chain.BlockHistoryLimit != 0 {
		blockHistoryLimit = chain.BlockHistoryLimit
	}

	state = &ProviderState{
		ProviderName:      name,
		Chain:             chain,
		ChainID:           chainID,
		Client:            client,
		Contracts:         contracts,
		CurrentBlock:      currentBlock,
		GasTarget:         gasTarget,
		BlockHistoryLimit: blockHistoryLimit,
	}
	return
}

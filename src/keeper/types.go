package keeper

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/api3dao/airkeeper/src/utils/config"
	"github.com/api3dao/airkeeper/src/utils/eth"
	"github.com/api3dao/airkeeper/src/utils/wallet"
)

// Subscription with all fields parsed and its id verified against the
// derived hash
type Subscription struct {
	ID                common.Hash
	ChainID           *big.Int
	Airnode           common.Address
	TemplateID        common.Hash
	Parameters        []byte
	Conditions        []byte
	Relayer           common.Address
	Sponsor           common.Address
	Requester         common.Address
	FulfillFunctionID [4]byte
}

// Subscriptions sharing a template share one API call
type GroupedSubscriptions struct {
	TemplateID         common.Hash
	EndpointID         common.Hash
	Endpoint           config.Endpoint
	TemplateParameters []byte
	Subscriptions      []*Subscription
}

// RrpJob is a validated beacon keeper job
type RrpJob struct {
	TemplateID         common.Hash
	EndpointID         common.Hash
	Endpoint           config.Endpoint
	TemplateParameters []byte
	BeaconID           common.Hash

	// Deviation threshold scaled the same way as computed deviations
	DeviationThreshold *big.Int

	KeeperSponsor  common.Address
	RequestSponsor common.Address

	// Chains the job runs on, empty means all
	ChainIds []string
}

// ProviderState is everything phase four needs to talk to one provider
type ProviderState struct {
	ProviderName      string
	Chain             config.Chain
	ChainID           *big.Int
	Client            *eth.Client
	Contracts         map[string]common.Address
	CurrentBlock      int64
	GasTarget         *eth.GasTarget
	BlockHistoryLimit int64
}

// CandidateUpdate is a subscription that survived the condition check,
// waiting for its nonce
type CandidateUpdate struct {
	Subscription *Subscription
	ApiValue     *big.Int
	Data         []byte
	Nonce        uint64
}

// SponsorGroup serializes all updates paid by one sponsor wallet
type SponsorGroup struct {
	Sponsor    common.Address
	Wallet     *wallet.Wallet
	Candidates []*CandidateUpdate
}

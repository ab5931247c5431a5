package keeper

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/api3dao/airkeeper/src/utils/protocol"
)

// checkPspCondition asks DapiServer whether the fetched value deviates
// enough to warrant an update. The call is read-only and made from the
// zero address. The condition function is picked by the selector embedded
// in the subscription's conditions.
func (self *Coordinator) checkPspCondition(ctx context.Context, provider *ProviderState, subscription *Subscription, apiValue *big.Int) (data []byte, met bool, err error) {
	dapiServer, ok := provider.Contracts[protocol.ContractDapiServer]
	if !ok {
		err = fmt.Errorf("chain %s has no DapiServer contract", provider.Chain.ID)
		return
	}

	data, err = protocol.EncodeInt256(apiValue)
	if err != nil {
		return
	}

	selector, conditionParameters, err := protocol.DecodeConditions(subscription.Conditions)
	if err != nil {
		return
	}

	method, err := protocol.ConditionMethod(selector)
	if err != nil {
		return
	}

	calldata, err := protocol.DapiServerABI.Pack(method.Name, [32]byte(subscription.ID), data, conditionParameters)
	if err != nil {
		return
	}

	msg := ethereum.CallMsg{
		// Zero-address signer, the contract treats the check as anonymous
		From: common.Address{},
		To:   &dapiServer,
		Data: calldata,
	}

	var ret []byte
	err = self.retry(ctx).
		WithOnError(func(err error) {
			self.log.WithError(err).WithField("subscriptionId", subscription.ID.Hex()).Warn("Condition call attempt failed, retrying")
		}).
		Run(func(ctx context.Context) error {
			var callErr error
			ret, callErr = provider.Client.CallContract(ctx, msg, big.NewInt(provider.CurrentBlock))
			return callErr
		})
	if err != nil {
		return
	}

	out, err := protocol.DapiServerABI.Unpack(method.Name, ret)
	if err != nil {
		return
	}
	met, ok = out[0].(bool)
	if !ok {
		err = fmt.Errorf("condition function %s did not return a boolean", method.Name)
	}
	return
}

// readBeacon fetches the current on-chain value of an RRP beacon
func (self *Coordinator) readBeacon(ctx context.Context, provider *ProviderState, beaconID common.Hash) (value *big.Int, err error) {
	beaconServer, ok := provider.Contracts[protocol.ContractRrpBeaconServer]
	if !ok {
		err = fmt.Errorf("chain %s has no RrpBeaconServer contract", provider.Chain.ID)
		return
	}

	calldata, err := protocol.RrpBeaconServerABI.Pack("readBeacon", [32]byte(beaconID))
	if err != nil {
		return
	}

	msg := ethereum.CallMsg{
		From: common.Address{},
		To:   &beaconServer,
		Data: calldata,
	}

	var ret []byte
	err = self.retry(ctx).
		WithOnError(func(err error) {
			self.log.WithError(err).WithField("beaconId", beaconID.Hex()).Warn("Beacon read attempt failed, retrying")
		}).
		Run(func(ctx context.Context) error {
			var callErr error
			ret, callErr = provider.Client.CallContract(ctx, msg, big.NewInt(provider.CurrentBlock))
			return callErr
		})
	if err != nil {
		return
	}

	out, err := protocol.RrpBeaconServerABI.Unpack("readBeacon", ret)
	if err != nil {
		return
	}
	value, ok = out[0].(*big.Int)
	if !ok {
		err = fmt.Errorf("readBeacon did not return a numeric value")
	}
	return
}

package keeper

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/api3dao/airkeeper/src/utils/wallet"
)

// groupBySponsor splits subscriptions by their sponsor, keeping the order
// they appeared in after trigger resolution. That order is what nonces are
// later assigned in.
func groupBySponsor(subscriptions []*Subscription) (sponsors []common.Address, grouped map[common.Address][]*Subscription) {
	grouped = map[common.Address][]*Subscription{}
	for _, subscription := range subscriptions {
		if _, ok := grouped[subscription.Sponsor]; !ok {
			sponsors = append(sponsors, subscription.Sponsor)
		}
		grouped[subscription.Sponsor] = append(grouped[subscription.Sponsor], subscription)
	}
	return
}

// assignNonces hands out strictly increasing nonces in candidate order,
// starting at the fetched transaction count
func assignNonces(candidates []*CandidateUpdate, start uint64) {
	for i, candidate := range candidates {
		candidate.Nonce = start + uint64(i)
	}
}

// fetchNonce reads the transaction count of the sponsor wallet at the
// provider's current block. The first update of the cycle is assigned
// exactly this count, later ones increase by one with no gaps.
func (self *Coordinator) fetchNonce(ctx context.Context, provider *ProviderState, sponsorWallet *wallet.Wallet) (nonce uint64, err error) {
	err = self.retry(ctx).
		WithOnError(func(err error) {
			self.log.WithError(err).
				WithField("sponsorWallet", sponsorWallet.Address.Hex()).
				Warn("Nonce fetch attempt failed, retrying")
		}).
		Run(func(ctx context.Context) error {
			var nonceErr error
			nonce, nonceErr = provider.Client.NonceAt(ctx, sponsorWallet.Address, big.NewInt(provider.CurrentBlock))
			return nonceErr
		})
	return
}

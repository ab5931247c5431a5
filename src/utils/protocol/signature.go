package protocol

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PspFulfillmentHash hashes the packed encoding of
// (subscriptionId, timestamp, sponsorWallet)
func PspFulfillmentHash(subscriptionID common.Hash, timestamp *big.Int, sponsorWallet common.Address) common.Hash {
	var ts [32]byte
	timestamp.FillBytes(ts[:])
	return crypto.Keccak256Hash(subscriptionID.Bytes(), ts[:], sponsorWallet.Bytes())
}

// SignPspFulfillment signs the fulfillment hash with the airnode key under
// the Ethereum personal-message prefix. The recovery id is shifted to the
// 27/28 convention contracts expect.
func SignPspFulfillment(airnodeKey *ecdsa.PrivateKey, subscriptionID common.Hash, timestamp *big.Int, sponsorWallet common.Address) (signature []byte, err error) {
	hash := PspFulfillmentHash(subscriptionID, timestamp, sponsorWallet)
	digest := accounts.TextHash(hash.Bytes())

	signature, err = crypto.Sign(digest, airnodeKey)
	if err != nil {
		return
	}

	signature[64] += 27
	return
}

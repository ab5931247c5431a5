package protocol

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignPspFulfillmentRecovers(t *testing.T) {
	airnodeKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	airnodeAddress := crypto.PubkeyToAddress(airnodeKey.PublicKey)

	subscriptionID := common.HexToHash("0xc1ed31de05a9aa74410c24bccd6aa40235006f9063f1c65d47401e97ad04560e")
	timestamp := big.NewInt(1654000000)
	sponsorWallet := common.HexToAddress("0x61648B2Ec3e6b3492E90184Ef281C2ba28a675ec")

	signature, err := SignPspFulfillment(airnodeKey, subscriptionID, timestamp, sponsorWallet)
	require.NoError(t, err)
	require.Len(t, signature, 65)

	// The signature recovers to the airnode address under the personal
	// message prefix
	digest := accounts.TextHash(PspFulfillmentHash(subscriptionID, timestamp, sponsorWallet).Bytes())

	recovery := make([]byte, 65)
	copy(recovery, signature)
	recovery[64] -= 27

	pubKey, err := crypto.SigToPub(digest, recovery)
	require.NoError(t, err)
	assert.Equal(t, airnodeAddress, crypto.PubkeyToAddress(*pubKey))
}

func TestPspFulfillmentHashPacksTightly(t *testing.T) {
	subscriptionID := common.HexToHash("0xc1ed31de05a9aa74410c24bccd6aa40235006f9063f1c65d47401e97ad04560e")
	timestamp := big.NewInt(1654000000)
	sponsorWallet := common.HexToAddress("0x61648B2Ec3e6b3492E90184Ef281C2ba28a675ec")

	var ts [32]byte
	timestamp.FillBytes(ts[:])
	packed := append(append(subscriptionID.Bytes(), ts[:]...), sponsorWallet.Bytes()...)

	assert.Equal(t, crypto.Keccak256Hash(packed), PspFulfillmentHash(subscriptionID, timestamp, sponsorWallet))
}

package protocol

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveEndpointID(t *testing.T) {
	id, err := DeriveEndpointID("Currency Converter API", "convertToUSD")
	require.NoError(t, err)

	other, err := DeriveEndpointID("Currency Converter API", "convertToUSD")
	require.NoError(t, err)
	assert.Equal(t, id, other)

	different, err := DeriveEndpointID("Currency Converter API", "convertToEUR")
	require.NoError(t, err)
	assert.NotEqual(t, id, different)
}

func TestDeriveTemplateID(t *testing.T) {
	endpointID := common.HexToHash("0xfb87102cdabadf905321521ba0b3cbf74ad09c5d400ac2eccdbef8d6143e78c4")
	parameters := common.FromHex("0x315375")

	// The template identity is the hash of the packed encoding
	assert.Equal(t,
		crypto.Keccak256Hash(append(endpointID.Bytes(), parameters...)),
		DeriveTemplateID(endpointID, parameters),
	)

	assert.NotEqual(t,
		DeriveTemplateID(endpointID, parameters),
		DeriveTemplateID(endpointID, append(parameters, 0x01)),
	)
}

func TestDeriveSubscriptionID(t *testing.T) {
	chainID := big.NewInt(31337)
	airnode := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	templateID := common.HexToHash("0xea30f92923ece1a97af69d450a8418db31be5a26a886540a13c09c739ba8eaaa")
	parameters := common.FromHex("0x315375")
	conditions := common.FromHex("0x313375")
	relayer := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	sponsor := common.HexToAddress("0x61648B2Ec3e6b3492E90184Ef281C2ba28a675ec")
	requester := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	fulfillFunctionID := [4]byte{0x20, 0x6b, 0x48, 0xf4}

	id, err := DeriveSubscriptionID(chainID, airnode, templateID, parameters, conditions, relayer, sponsor, requester, fulfillFunctionID)
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, id)

	// Deterministic
	again, err := DeriveSubscriptionID(chainID, airnode, templateID, parameters, conditions, relayer, sponsor, requester, fulfillFunctionID)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	// Every field is part of the identity
	other, err := DeriveSubscriptionID(big.NewInt(1), airnode, templateID, parameters, conditions, relayer, sponsor, requester, fulfillFunctionID)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)

	other, err = DeriveSubscriptionID(chainID, airnode, templateID, parameters, conditions, relayer, sponsor, requester, [4]byte{0xde, 0xad, 0xbe, 0xef})
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestDeriveRrpTemplateID(t *testing.T) {
	airnode := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	endpointID := common.HexToHash("0xfb87102cdabadf905321521ba0b3cbf74ad09c5d400ac2eccdbef8d6143e78c4")
	parameters := common.FromHex("0x315375")

	id := DeriveRrpTemplateID(airnode, endpointID, parameters)
	expected := crypto.Keccak256Hash(airnode.Bytes(), endpointID.Bytes(), parameters)
	assert.Equal(t, expected, id)
}

func TestEncodeInt256(t *testing.T) {
	encoded, err := EncodeInt256(big.NewInt(723392020))
	require.NoError(t, err)
	require.Len(t, encoded, 32)
	assert.Equal(t, big.NewInt(723392020), new(big.Int).SetBytes(encoded))

	// Negative values two's complement into the full word
	encoded, err = EncodeInt256(big.NewInt(-1))
	require.NoError(t, err)
	for _, b := range encoded {
		assert.Equal(t, byte(0xff), b)
	}
}

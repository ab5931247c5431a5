package protocol

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nameWord(name string) (word [32]byte) {
	copy(word[:], name)
	return
}

func TestDecodeParameters(t *testing.T) {
	var header [32]byte
	copy(header[:], "1SSu")

	args := abi.Arguments{
		{Type: typeBytes32},
		{Type: typeBytes32}, {Type: typeString},
		{Type: typeBytes32}, {Type: typeString},
		{Type: typeBytes32}, {Type: typeUint256},
	}
	encoded, err := args.Pack(
		header,
		nameWord("from"), "ETH",
		nameWord("_type"), "int256",
		nameWord("_times"), big.NewInt(1000000),
	)
	require.NoError(t, err)

	parameters, err := DecodeParameters(encoded)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"from":   "ETH",
		"_type":  "int256",
		"_times": "1000000",
	}, parameters)
}

func TestDecodeParametersAddressValue(t *testing.T) {
	var header [32]byte
	copy(header[:], "1a")

	address := common.HexToAddress("0x61648B2Ec3e6b3492E90184Ef281C2ba28a675ec")
	args := abi.Arguments{
		{Type: typeBytes32},
		{Type: typeBytes32}, {Type: typeAddress},
	}
	encoded, err := args.Pack(header, nameWord("wallet"), address)
	require.NoError(t, err)

	parameters, err := DecodeParameters(encoded)
	require.NoError(t, err)
	assert.Equal(t, address.Hex(), parameters["wallet"])
}

func TestDecodeParametersEmpty(t *testing.T) {
	parameters, err := DecodeParameters(nil)
	require.NoError(t, err)
	assert.Empty(t, parameters)
}

func TestDecodeParametersRejectsBadHeader(t *testing.T) {
	var header [32]byte
	copy(header[:], "2S")

	args := abi.Arguments{{Type: typeBytes32}, {Type: typeBytes32}, {Type: typeString}}
	encoded, err := args.Pack(header, nameWord("from"), "ETH")
	require.NoError(t, err)

	_, err = DecodeParameters(encoded)
	assert.Error(t, err)

	_, err = DecodeParameters([]byte{0x01, 0x02})
	assert.Error(t, err)
}

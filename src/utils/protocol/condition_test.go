package protocol

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeConditions(t *testing.T, selector [4]byte, parameters []byte) []byte {
	args := abi.Arguments{{Type: typeBytes4}, {Type: typeBytes}}
	encoded, err := args.Pack(selector, parameters)
	require.NoError(t, err)
	return encoded
}

func TestDecodeConditions(t *testing.T) {
	selector := [4]byte(DapiServerABI.Methods["conditionPspBeaconUpdate"].ID)
	parameters := []byte{0x01, 0x02, 0x03}

	decodedSelector, decodedParameters, err := DecodeConditions(encodeConditions(t, selector, parameters))
	require.NoError(t, err)
	assert.Equal(t, selector, decodedSelector)
	assert.Equal(t, parameters, decodedParameters)

	_, _, err = DecodeConditions([]byte{0x00})
	assert.Error(t, err)
}

func TestConditionMethod(t *testing.T) {
	selector := [4]byte(DapiServerABI.Methods["conditionPspBeaconUpdate"].ID)

	method, err := ConditionMethod(selector)
	require.NoError(t, err)
	assert.Equal(t, "conditionPspBeaconUpdate", method.Name)

	// The fulfillment function is not a condition even though its selector
	// is known
	fulfill := [4]byte(DapiServerABI.Methods["fulfillPspBeaconUpdate"].ID)
	_, err = ConditionMethod(fulfill)
	assert.Error(t, err)

	_, err = ConditionMethod([4]byte{0xde, 0xad, 0xbe, 0xef})
	assert.Error(t, err)
}

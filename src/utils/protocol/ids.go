package protocol

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

var (
	typeString  = mustType("string")
	typeUint256 = mustType("uint256")
	typeAddress = mustType("address")
	typeBytes32 = mustType("bytes32")
	typeBytes   = mustType("bytes")
	typeBytes4  = mustType("bytes4")
)

// DeriveEndpointID hashes the ABI encoding of (oisTitle, endpointName)
func DeriveEndpointID(oisTitle string, endpointName string) (id common.Hash, err error) {
	args := abi.Arguments{{Type: typeString}, {Type: typeString}}
	encoded, err := args.Pack(oisTitle, endpointName)
	if err != nil {
		return
	}
	id = crypto.Keccak256Hash(encoded)
	return
}

// DeriveTemplateID hashes the packed encoding of (endpointId, templateParameters)
func DeriveTemplateID(endpointID common.Hash, templateParameters []byte) common.Hash {
	return crypto.Keccak256Hash(endpointID.Bytes(), templateParameters)
}

// DeriveRrpTemplateID hashes the packed encoding of
// (airnode, endpointId, encodedParameters), the template identity the RRP
// protocol contracts expect
func DeriveRrpTemplateID(airnode common.Address, endpointID common.Hash, encodedParameters []byte) common.Hash {
	return crypto.Keccak256Hash(airnode.Bytes(), endpointID.Bytes(), encodedParameters)
}

// DeriveBeaconID hashes the packed encoding of (templateId, parameters)
func DeriveBeaconID(templateID common.Hash, parameters []byte) common.Hash {
	return crypto.Keccak256Hash(templateID.Bytes(), parameters)
}

// DeriveSubscriptionID hashes the ABI encoding of the canonical nine
// subscription fields
func DeriveSubscriptionID(
	chainID *big.Int,
	airnode common.Address,
	templateID common.Hash,
	parameters []byte,
	conditions []byte,
	relayer common.Address,
	sponsor common.Address,
	requester common.Address,
	fulfillFunctionID [4]byte,
) (id common.Hash, err error) {
	args := abi.Arguments{
		{Type: typeUint256},
		{Type: typeAddress},
		{Type: typeBytes32},
		{Type: typeBytes},
		{Type: typeBytes},
		{Type: typeAddress},
		{Type: typeAddress},
		{Type: typeAddress},
		{Type: typeBytes4},
	}
	encoded, err := args.Pack(
		chainID,
		airnode,
		[32]byte(templateID),
		parameters,
		conditions,
		relayer,
		sponsor,
		requester,
		fulfillFunctionID,
	)
	if err != nil {
		return
	}
	id = crypto.Keccak256Hash(encoded)
	return
}

// EncodeInt256 ABI-encodes a single int256 value
func EncodeInt256(value *big.Int) (encoded []byte, err error) {
	args := abi.Arguments{{Type: mustType("int256")}}
	return args.Pack(value)
}

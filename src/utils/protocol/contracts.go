package protocol

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract names as they appear under chains[].contracts
const (
	ContractAirnodeRrp      = "AirnodeRrp"
	ContractRrpBeaconServer = "RrpBeaconServer"
	ContractDapiServer      = "DapiServer"
)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}

// The fixed on-chain surface the keeper consumes. Selectors and event
// signatures are part of the contract.
var (
	DapiServerABI = mustParseABI(`[
		{
			"type": "function",
			"name": "conditionPspBeaconUpdate",
			"stateMutability": "view",
			"inputs": [
				{"name": "subscriptionId", "type": "bytes32"},
				{"name": "data", "type": "bytes"},
				{"name": "conditionParameters", "type": "bytes"}
			],
			"outputs": [{"name": "", "type": "bool"}]
		},
		{
			"type": "function",
			"name": "fulfillPspBeaconUpdate",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "subscriptionId", "type": "bytes32"},
				{"name": "airnode", "type": "address"},
				{"name": "relayer", "type": "address"},
				{"name": "sponsor", "type": "address"},
				{"name": "timestamp", "type": "uint256"},
				{"name": "data", "type": "bytes"},
				{"name": "signature", "type": "bytes"}
			],
			"outputs": []
		}
	]`)

	RrpBeaconServerABI = mustParseABI(`[
		{
			"type": "function",
			"name": "readBeacon",
			"stateMutability": "view",
			"inputs": [{"name": "beaconId", "type": "bytes32"}],
			"outputs": [
				{"name": "value", "type": "uint128"},
				{"name": "timestamp", "type": "uint32"}
			]
		},
		{
			"type": "function",
			"name": "requestBeaconUpdate",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "templateId", "type": "bytes32"},
				{"name": "requestSponsor", "type": "address"},
				{"name": "requestSponsorWallet", "type": "address"},
				{"name": "parameters", "type": "bytes"}
			],
			"outputs": []
		},
		{
			"type": "event",
			"name": "RequestedBeaconUpdate",
			"inputs": [
				{"name": "beaconId", "type": "bytes32", "indexed": true},
				{"name": "sponsor", "type": "address", "indexed": true},
				{"name": "sponsorWallet", "type": "address", "indexed": true},
				{"name": "requestId", "type": "bytes32", "indexed": false},
				{"name": "templateId", "type": "bytes32", "indexed": false},
				{"name": "parameters", "type": "bytes", "indexed": false}
			]
		},
		{
			"type": "event",
			"name": "UpdatedBeacon",
			"inputs": [
				{"name": "beaconId", "type": "bytes32", "indexed": true},
				{"name": "requestId", "type": "bytes32", "indexed": false},
				{"name": "value", "type": "int256", "indexed": false},
				{"name": "timestamp", "type": "uint32", "indexed": false}
			]
		}
	]`)

	AirnodeRrpABI = mustParseABI(`[
		{
			"type": "function",
			"name": "requestIsAwaitingFulfillment",
			"stateMutability": "view",
			"inputs": [{"name": "requestId", "type": "bytes32"}],
			"outputs": [{"name": "", "type": "bool"}]
		}
	]`)
)

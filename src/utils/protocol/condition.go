package protocol

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// DecodeConditions splits subscription conditions into the condition
// function selector and its parameters
func DecodeConditions(conditions []byte) (selector [4]byte, parameters []byte, err error) {
	args := abi.Arguments{{Type: typeBytes4}, {Type: typeBytes}}
	values, err := args.Unpack(conditions)
	if err != nil {
		return
	}

	selector = values[0].([4]byte)
	parameters = values[1].([]byte)
	return
}

// ConditionMethod resolves a condition selector to the DapiServer view
// function it names. The set of selectors is fixed, anything else is an
// error.
func ConditionMethod(selector [4]byte) (method abi.Method, err error) {
	for _, candidate := range DapiServerABI.Methods {
		if len(candidate.ID) == 4 && [4]byte(candidate.ID) == selector && candidate.IsConstant() {
			return candidate, nil
		}
	}
	err = fmt.Errorf("unknown condition function selector 0x%x", selector)
	return
}

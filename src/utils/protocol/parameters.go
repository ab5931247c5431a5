package protocol

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Template and subscription parameters travel as ABI-encoded blobs led by
// a bytes32 header: the first character is the schema version, every
// following character names the type of one (name, value) pair.
const parameterSchemaVersion = '1'

var parameterTypes = map[byte]abi.Type{
	'S': typeString,
	'a': typeAddress,
	'b': typeBytes32,
	'i': mustType("int256"),
	'u': typeUint256,
	'B': typeBytes,
}

// DecodeParameters decodes an encoded parameter blob into key/value pairs.
// Values are rendered as strings the HTTP adapter can put on the wire.
func DecodeParameters(encoded []byte) (parameters map[string]string, err error) {
	parameters = map[string]string{}
	if len(encoded) == 0 {
		return
	}
	if len(encoded) < 32 {
		err = fmt.Errorf("parameter blob too short: %d bytes", len(encoded))
		return
	}

	header := bytes.TrimRight(encoded[:32], "\x00")
	if len(header) == 0 || header[0] != parameterSchemaVersion {
		err = fmt.Errorf("unsupported parameter schema header %q", header)
		return
	}

	args := abi.Arguments{{Type: typeBytes32}}
	for _, char := range header[1:] {
		paramType, ok := parameterTypes[char]
		if !ok {
			err = fmt.Errorf("unknown parameter type %q", string(char))
			return
		}
		args = append(args, abi.Argument{Type: typeBytes32}, abi.Argument{Type: paramType})
	}

	values, err := args.Unpack(encoded)
	if err != nil {
		return
	}

	for i := 1; i+1 < len(values); i += 2 {
		name := values[i].([32]byte)
		key := string(bytes.TrimRight(name[:], "\x00"))
		parameters[key] = renderParameterValue(values[i+1])
	}
	return
}

func renderParameterValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case common.Address:
		return v.Hex()
	case [32]byte:
		return "0x" + hex.EncodeToString(v[:])
	case []byte:
		return "0x" + hex.EncodeToString(v)
	case *big.Int:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

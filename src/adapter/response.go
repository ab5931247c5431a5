package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

var (
	ErrMissingType  = errors.New("reserved parameter _type is missing")
	ErrValueMissing = errors.New("no value at response path")
)

// ExtractAndEncode reduces a JSON response body to a signed 256-bit value
// per the endpoint's reserved parameters. _type has to be present; _path
// walks into the response; _times scales the value before truncation.
func ExtractAndEncode(body []byte, reserved map[string]string) (value *big.Int, err error) {
	valueType, ok := reserved["_type"]
	if !ok || valueType == "" {
		err = ErrMissingType
		return
	}
	switch valueType {
	case "int256", "uint256":
	default:
		err = fmt.Errorf("unsupported _type %q", valueType)
		return
	}

	var decoded interface{}
	err = json.Unmarshal(body, &decoded)
	if err != nil {
		return
	}

	raw, err := walkPath(decoded, reserved["_path"])
	if err != nil {
		return
	}

	number, err := toBigFloat(raw)
	if err != nil {
		return
	}

	if times, ok := reserved["_times"]; ok && times != "" {
		var multiplier int64
		multiplier, err = strconv.ParseInt(times, 10, 64)
		if err != nil {
			return
		}
		number.Mul(number, new(big.Float).SetInt64(multiplier))
	}

	value, _ = number.Int(nil)
	return
}

func walkPath(decoded interface{}, path string) (value interface{}, err error) {
	value = decoded
	if path == "" {
		return
	}

	for _, segment := range strings.Split(path, ".") {
		switch node := value.(type) {
		case map[string]interface{}:
			var ok bool
			value, ok = node[segment]
			if !ok {
				return nil, ErrValueMissing
			}
		case []interface{}:
			var index int
			index, err = strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, ErrValueMissing
			}
			value = node[index]
		default:
			return nil, ErrValueMissing
		}
	}
	return
}

func toBigFloat(raw interface{}) (number *big.Float, err error) {
	switch v := raw.(type) {
	case float64:
		number = big.NewFloat(v)
	case string:
		var ok bool
		number, ok = new(big.Float).SetString(v)
		if !ok {
			err = fmt.Errorf("response value %q is not numeric", v)
		}
	default:
		err = fmt.Errorf("response value of type %T is not numeric", raw)
	}
	return
}

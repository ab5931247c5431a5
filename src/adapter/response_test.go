package adapter

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAndEncode(t *testing.T) {
	body := []byte(`{"success": true, "result": "723.39202"}`)

	value, err := ExtractAndEncode(body, map[string]string{
		"_type":  "int256",
		"_path":  "result",
		"_times": "1000000",
	})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(723392020), value)
}

func TestExtractAndEncodeNumericField(t *testing.T) {
	body := []byte(`{"data": {"prices": [41091.12345]}}`)

	value, err := ExtractAndEncode(body, map[string]string{
		"_type":  "int256",
		"_path":  "data.prices.0",
		"_times": "1000000",
	})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(41091123450), value)
}

func TestExtractAndEncodeWithoutTimes(t *testing.T) {
	value, err := ExtractAndEncode([]byte(`{"result": 42}`), map[string]string{
		"_type": "uint256",
		"_path": "result",
	})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), value)
}

func TestExtractAndEncodeMissingType(t *testing.T) {
	_, err := ExtractAndEncode([]byte(`{"result": 42}`), map[string]string{
		"_path": "result",
	})
	assert.ErrorIs(t, err, ErrMissingType)
}

func TestExtractAndEncodeUnsupportedType(t *testing.T) {
	_, err := ExtractAndEncode([]byte(`{"result": 42}`), map[string]string{
		"_type": "bytes32",
		"_path": "result",
	})
	assert.Error(t, err)
}

func TestExtractAndEncodeMissingPath(t *testing.T) {
	_, err := ExtractAndEncode([]byte(`{"result": 42}`), map[string]string{
		"_type": "int256",
		"_path": "no.such.field",
	})
	assert.ErrorIs(t, err, ErrValueMissing)
}

func TestExtractAndEncodeNonNumeric(t *testing.T) {
	_, err := ExtractAndEncode([]byte(`{"result": "not a number"}`), map[string]string{
		"_type": "int256",
		"_path": "result",
	})
	assert.Error(t, err)
}

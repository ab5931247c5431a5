package eth

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

const (
	TxTypeLegacy  = "legacy"
	TxTypeEip1559 = "eip1559"
)

// GasTarget carries the pricing of an update transaction, either legacy
// or EIP-1559
type GasTarget struct {
	TxType string

	// Legacy
	GasPrice *big.Int

	// EIP-1559
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
}

// FetchGasTarget computes the gas target for the chain.
// For eip1559 chains maxFeePerGas = baseFeePerGas * baseFeeMultiplier + priorityFee.
// A chain configured as eip1559 but serving no base fee falls back to a
// legacy gas price with a warning.
func FetchGasTarget(ctx context.Context, log *logrus.Entry, client *Client, txType string, baseFeeMultiplier int64, priorityFee *big.Int) (target *GasTarget, err error) {
	if txType == TxTypeEip1559 {
		var header *types.Header
		header, err = client.HeaderByNumber(ctx, nil)
		if err != nil {
			return
		}

		if header.BaseFee != nil {
			maxFee := new(big.Int).Mul(header.BaseFee, big.NewInt(baseFeeMultiplier))
			maxFee.Add(maxFee, priorityFee)
			target = &GasTarget{
				TxType:               TxTypeEip1559,
				MaxPriorityFeePerGas: new(big.Int).Set(priorityFee),
				MaxFeePerGas:         maxFee,
			}
			return
		}

		log.Warn("Chain configured as eip1559 serves no base fee, falling back to legacy gas price")
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return
	}

	target = &GasTarget{
		TxType:   TxTypeLegacy,
		GasPrice: gasPrice,
	}
	return
}

// PriorityFeeWei converts a configured {value, unit} pair to wei
func PriorityFeeWei(value float64, unit string) (wei *big.Int, err error) {
	multipliers := map[string]int64{
		"wei":    0,
		"kwei":   3,
		"mwei":   6,
		"gwei":   9,
		"szabo":  12,
		"finney": 15,
		"ether":  18,
	}

	exp, ok := multipliers[unit]
	if !ok {
		err = fmt.Errorf("unknown fee unit %q", unit)
		return
	}

	scaled := new(big.Float).Mul(
		big.NewFloat(value),
		new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil)),
	)
	wei, _ = scaled.Int(nil)
	return
}

package keeper

import (
	"fmt"
	"math/big"
	"strings"
)

// Deviations are fractions scaled by 1e18, so 1% is 1e16. Percentages are
// configured with up to two decimal places, each hundredth of a percent
// worth 1e14.
var (
	deviationScale  = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	hundredthOfPcnt = new(big.Int).Exp(big.NewInt(10), big.NewInt(14), nil)
)

// ParseDeviationPercentage converts a percentage literal like "0.25" to the
// scaled threshold. More than two decimal places is an error.
func ParseDeviationPercentage(literal string) (threshold *big.Int, err error) {
	literal = strings.TrimSpace(literal)
	if literal == "" || strings.HasPrefix(literal, "-") {
		err = fmt.Errorf("invalid deviation percentage %q", literal)
		return
	}

	whole := literal
	fraction := ""
	if i := strings.IndexByte(literal, '.'); i >= 0 {
		whole, fraction = literal[:i], literal[i+1:]
	}
	if len(fraction) > 2 {
		err = fmt.Errorf("deviation percentage %q has more than two decimal places", literal)
		return
	}
	for len(fraction) < 2 {
		fraction += "0"
	}
	if whole == "" {
		whole = "0"
	}

	hundredths, ok := new(big.Int).SetString(whole+fraction, 10)
	if !ok {
		err = fmt.Errorf("invalid deviation percentage %q", literal)
		return
	}

	threshold = new(big.Int).Mul(hundredths, hundredthOfPcnt)
	return
}

// Deviation computes |api - beacon| * 1e18 / max(|beacon|, 1)
func Deviation(beacon *big.Int, api *big.Int) *big.Int {
	delta := new(big.Int).Abs(new(big.Int).Sub(api, beacon))

	base := new(big.Int).Abs(beacon)
	if base.Sign() == 0 {
		base = big.NewInt(1)
	}

	return delta.Mul(delta, deviationScale).Div(delta, base)
}

// DeviationExceeds reports whether an update is worth submitting.
// An exactly equal value never is.
func DeviationExceeds(beacon *big.Int, api *big.Int, threshold *big.Int) bool {
	return Deviation(beacon, api).Cmp(threshold) > 0
}

package config

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/api3dao/airkeeper/src/utils/wallet"
)

var validate = validator.New()

// Validate checks the merged configuration before any network I/O happens.
// Violations in the node document surface as ErrInvalidAirnodeConfig,
// violations in the keeper document as ErrInvalidAirkeeperConfig.
func (self *Merged) Validate() (err error) {
	if self.Mnemonic == "" {
		return ErrInvalidAirnodeConfig
	}

	if len(self.EvmChains()) == 0 {
		return ErrInvalidAirnodeConfig
	}

	err = validate.Struct(&AirnodeConfig{
		Chains:       self.Chains,
		NodeSettings: self.NodeSettings,
	})
	if err != nil {
		return ErrInvalidAirnodeConfig
	}

	if self.AirnodeAddress == "" || !common.IsHexAddress(self.AirnodeAddress) {
		return ErrInvalidAirkeeperConfig
	}

	declared := common.HexToAddress(self.AirnodeAddress)

	var derived common.Address
	if self.AirnodeXpub != "" {
		derived, err = wallet.AirnodeAddressFromXpub(self.AirnodeXpub)
		if err != nil {
			return ErrInvalidAirkeeperConfig
		}
	} else {
		var deriver *wallet.Deriver
		deriver, err = wallet.NewDeriver(self.Mnemonic)
		if err != nil {
			return ErrInvalidAirnodeConfig
		}
		var airnode *wallet.Wallet
		airnode, err = deriver.Airnode()
		if err != nil {
			return ErrInvalidAirnodeConfig
		}
		derived = airnode.Address
	}

	if !strings.EqualFold(declared.Hex(), derived.Hex()) {
		return ErrInvalidAirkeeperConfig
	}

	return nil
}

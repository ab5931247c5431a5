package config

import "strings"

// Merged is the single configuration the update cycle runs on.
// It is immutable for the duration of one invocation.
type Merged struct {
	Mnemonic       string
	AirnodeAddress string
	AirnodeXpub    string

	NodeSettings NodeSettings

	Chains   []Chain
	Triggers Triggers

	Subscriptions map[string]Subscription
	Templates     map[string]Template
	Endpoints     map[string]Endpoint

	OIS            []OIS
	APICredentials []APICredential
}

// Merge overlays the Airkeeper document on top of the Airnode document.
// Keeper chains are matched to node chains by id and deep-merged onto them.
// A keeper chain whose id is unknown to the node config is fatal.
func Merge(node *AirnodeConfig, keeper *AirkeeperConfig) (merged *Merged, err error) {
	chains := make([]Chain, len(node.Chains))
	copy(chains, node.Chains)

	index := make(map[string]int, len(chains))
	for i, chain := range chains {
		index[chain.ID] = i
	}

	for _, overlay := range keeper.Chains {
		i, ok := index[overlay.ID]
		if !ok {
			return nil, ErrInvalidAirkeeperConfig
		}
		chains[i] = mergeChain(chains[i], overlay)
	}

	triggers := node.Triggers
	if len(keeper.Triggers.RrpBeaconServerKeeperJobs) > 0 {
		triggers.RrpBeaconServerKeeperJobs = keeper.Triggers.RrpBeaconServerKeeperJobs
	}
	if len(keeper.Triggers.ProtoPsp) > 0 {
		triggers.ProtoPsp = keeper.Triggers.ProtoPsp
	}

	merged = &Merged{
		Mnemonic:       node.NodeSettings.AirnodeWalletMnemonic,
		AirnodeAddress: keeper.AirnodeAddress,
		AirnodeXpub:    keeper.AirnodeXpub,
		NodeSettings:   node.NodeSettings,
		Chains:         chains,
		Triggers:       triggers,
		Subscriptions:  lowerKeys(keeper.Subscriptions),
		Templates:      lowerKeys(keeper.Templates),
		Endpoints:      lowerKeys(keeper.Endpoints),
		OIS:            node.OIS,
		APICredentials: node.APICredentials,
	}
	return
}

func mergeChain(base Chain, overlay Chain) (out Chain) {
	out = base

	if len(overlay.Contracts) > 0 {
		contracts := make(map[string]string, len(base.Contracts)+len(overlay.Contracts))
		for name, address := range base.Contracts {
			contracts[name] = address
		}
		for name, address := range overlay.Contracts {
			contracts[name] = address
		}
		out.Contracts = contracts
	}

	if len(overlay.Providers) > 0 {
		providers := make(map[string]Provider, len(base.Providers)+len(overlay.Providers))
		for name, provider := range base.Providers {
			providers[name] = provider
		}
		for name, provider := range overlay.Providers {
			providers[name] = provider
		}
		out.Providers = providers
	}

	if overlay.BlockHistoryLimit != 0 {
		out.BlockHistoryLimit = overlay.BlockHistoryLimit
	}
	if overlay.Options.TxType != "" {
		out.Options.TxType = overlay.Options.TxType
	}
	if overlay.Options.BaseFeeMultiplier != 0 {
		out.Options.BaseFeeMultiplier = overlay.Options.BaseFeeMultiplier
	}
	if overlay.Options.PriorityFee != nil {
		out.Options.PriorityFee = overlay.Options.PriorityFee
	}

	return
}

// Ids are hashes in hex, lookups shouldn't depend on their case
func lowerKeys[V any](in map[string]V) (out map[string]V) {
	out = make(map[string]V, len(in))
	for key, value := range in {
		out[strings.ToLower(key)] = value
	}
	return
}

// EvmChains returns configured chains of type evm
func (self *Merged) EvmChains() (out []Chain) {
	for _, chain := range self.Chains {
		if chain.Type == "evm" {
			out = append(out, chain)
		}
	}
	return
}

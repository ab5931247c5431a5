package config

import (
	"encoding/json"
	"os"
)

// AirkeeperConfig is the keeper configuration document (config/airkeeper.json).
// It is overlaid on top of the Airnode document by Merge.
type AirkeeperConfig struct {
	AirnodeAddress string `json:"airnodeAddress"`
	AirnodeXpub    string `json:"airnodeXpub"`

	Chains   []Chain  `json:"chains"`
	Triggers Triggers `json:"triggers"`

	Subscriptions map[string]Subscription `json:"subscriptions"`
	Templates     map[string]Template     `json:"templates"`
	Endpoints     map[string]Endpoint     `json:"endpoints"`
}

// Subscription is the PSP nine-tuple. Its map key must equal the hash
// derived from these fields.
type Subscription struct {
	ChainID           string `json:"chainId"`
	AirnodeAddress    string `json:"airnodeAddress"`
	TemplateID        string `json:"templateId"`
	Parameters        string `json:"parameters"`
	Conditions        string `json:"conditions"`
	Relayer           string `json:"relayer"`
	Sponsor           string `json:"sponsor"`
	Requester         string `json:"requester"`
	FulfillFunctionID string `json:"fulfillFunctionId"`
}

type Template struct {
	EndpointID         string `json:"endpointId"`
	TemplateParameters string `json:"templateParameters"`
}

type Endpoint struct {
	OisTitle     string `json:"oisTitle"`
	EndpointName string `json:"endpointName"`
}

// Reads the Airkeeper configuration document
func LoadAirkeeper(filename string) (out *AirkeeperConfig, err error) {
	/* #nosec */
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, ErrInvalidAirkeeperConfig
	}

	out = new(AirkeeperConfig)
	err = json.Unmarshal(content, out)
	if err != nil {
		return nil, ErrInvalidAirkeeperConfig
	}

	return
}

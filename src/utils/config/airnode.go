package config

import (
	"encoding/json"
	"os"
)

// AirnodeConfig is the node configuration document (config/airnode.json)
type AirnodeConfig struct {
	Chains         []Chain         `json:"chains" validate:"required,dive"`
	NodeSettings   NodeSettings    `json:"nodeSettings" validate:"required"`
	Triggers       Triggers        `json:"triggers"`
	OIS            []OIS           `json:"ois"`
	APICredentials []APICredential `json:"apiCredentials"`
}

type NodeSettings struct {
	AirnodeWalletMnemonic string `json:"airnodeWalletMnemonic"`
	CloudProvider         string `json:"cloudProvider"`
	Stage                 string `json:"stage"`
	LogLevel              string `json:"logLevel"`
}

type Chain struct {
	ID   string `json:"id" validate:"required"`
	Type string `json:"type" validate:"required"`

	// Contract name (AirnodeRrp, RrpBeaconServer, DapiServer) to address
	Contracts map[string]string `json:"contracts"`

	// Provider name to its JSON-RPC endpoint
	Providers map[string]Provider `json:"providers"`

	// How many blocks back to scan for pending requests. 0 means the global default.
	BlockHistoryLimit int64 `json:"blockHistoryLimit,omitempty"`

	Options ChainOptions `json:"options"`
}

type Provider struct {
	URL string `json:"url"`
}

type ChainOptions struct {
	// "legacy" or "eip1559"
	TxType string `json:"txType"`

	// maxFeePerGas = baseFeePerGas * BaseFeeMultiplier + priorityFee
	BaseFeeMultiplier int64 `json:"baseFeeMultiplier,omitempty"`

	PriorityFee *PriorityFee `json:"priorityFee,omitempty"`
}

type PriorityFee struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Triggers struct {
	RrpBeaconServerKeeperJobs []RrpBeaconServerKeeperJob `json:"rrpBeaconServerKeeperJobs"`
	ProtoPsp                  []string                   `json:"protoPsp"`
}

type RrpBeaconServerKeeperJob struct {
	TemplateID          string `json:"templateId"`
	TemplateParameters  string `json:"templateParameters"`
	EndpointID          string `json:"endpointId"`
	DeviationPercentage string `json:"deviationPercentage"`
	KeeperSponsor       string `json:"keeperSponsor"`
	RequestSponsor      string `json:"requestSponsor"`

	// Chains the job runs on. Empty means all configured chains.
	ChainIds []string `json:"chainIds,omitempty"`
}

// OIS describes one off-chain API, trimmed down to what request building needs
type OIS struct {
	Title             string            `json:"title"`
	APISpecifications APISpecifications `json:"apiSpecifications"`
	Endpoints         []OISEndpoint     `json:"endpoints"`
}

type APISpecifications struct {
	Servers []Server `json:"servers"`
}

type Server struct {
	URL string `json:"url"`
}

type OISEndpoint struct {
	Name      string    `json:"name"`
	Operation Operation `json:"operation"`

	// Parameters hardcoded by the OIS author, not overridable by requests
	FixedOperationParameters []FixedOperationParameter `json:"fixedOperationParameters"`

	// Parameters interpreted by the keeper itself, never sent to the API
	ReservedParameters []ReservedParameter `json:"reservedParameters"`

	// Parameters taken from the request template
	Parameters []EndpointParameter `json:"parameters"`
}

type Operation struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

type OperationParameter struct {
	In   string `json:"in"`
	Name string `json:"name"`
}

type FixedOperationParameter struct {
	OperationParameter OperationParameter `json:"operationParameter"`
	Value              string             `json:"value"`
}

type ReservedParameter struct {
	Name    string `json:"name"`
	Default string `json:"default,omitempty"`
}

type EndpointParameter struct {
	Name               string             `json:"name"`
	OperationParameter OperationParameter `json:"operationParameter"`
	Default            string             `json:"default,omitempty"`
}

type APICredential struct {
	OisTitle            string `json:"oisTitle"`
	SecuritySchemeName  string `json:"securitySchemeName"`
	SecuritySchemeValue string `json:"securitySchemeValue"`

	// Where the credential goes: "query" or "header"
	In string `json:"in"`
}

// Reads the Airnode configuration document.
// ${VAR} references inside credential values are expanded from the environment.
func LoadAirnode(filename string) (out *AirnodeConfig, err error) {
	/* #nosec */
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, ErrInvalidAirnodeConfig
	}

	out = new(AirnodeConfig)
	err = json.Unmarshal(content, out)
	if err != nil {
		return nil, ErrInvalidAirnodeConfig
	}

	for i := range out.APICredentials {
		out.APICredentials[i].SecuritySchemeValue = os.ExpandEnv(out.APICredentials[i].SecuritySchemeValue)
	}

	// The deployment environment wins over the document
	if cloudProvider := os.Getenv("CLOUD_PROVIDER"); cloudProvider != "" {
		out.NodeSettings.CloudProvider = cloudProvider
	}
	if stage := os.Getenv("STAGE"); stage != "" {
		out.NodeSettings.Stage = stage
	}

	return
}

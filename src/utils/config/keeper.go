package config

import (
	"time"

	"github.com/spf13/viper"
)

type Keeper struct {
	// Path to the Airnode configuration document
	AirnodeConfigPath string

	// Path to the Airkeeper configuration document
	AirkeeperConfigPath string

	// Cron spec used by the server command
	Schedule string

	// Deadline for a single update cycle, has to fit within the schedule interval
	CycleTimeout time.Duration

	// Per-attempt timeout of a single external call
	AttemptTimeout time.Duration

	// Initial backoff between retries of an external call
	RetryInterval time.Duration

	// Backoff between retries won't grow above this
	RetryMaxInterval time.Duration

	// How many times an external call is attempted before giving up
	MaxAttempts uint64

	// Gas limit of every update transaction
	GasLimit uint64

	// Base fee multiplier used to compute maxFeePerGas on EIP-1559 chains
	BaseFeeMultiplier int64

	// Priority fee in wei used on EIP-1559 chains
	PriorityFeeWei int64

	// How many blocks back to scan for pending beacon update requests
	BlockHistoryLimit int64

	// Max JSON-RPC requests per second towards one provider
	ProviderRequestsPerSecond int

	// Worker pool size of each fan-out phase
	MaxWorkers int
}

func setKeeperDefaults() {
	viper.SetDefault("Keeper.AirnodeConfigPath", "config/airnode.json")
	viper.SetDefault("Keeper.AirkeeperConfigPath", "config/airkeeper.json")
	viper.SetDefault("Keeper.Schedule", "@every 1m")
	viper.SetDefault("Keeper.CycleTimeout", "55s")
	viper.SetDefault("Keeper.AttemptTimeout", "5s")
	viper.SetDefault("Keeper.RetryInterval", "100ms")
	viper.SetDefault("Keeper.RetryMaxInterval", "500ms")
	viper.SetDefault("Keeper.MaxAttempts", "2")
	viper.SetDefault("Keeper.GasLimit", "500000")
	viper.SetDefault("Keeper.BaseFeeMultiplier", "2")
	viper.SetDefault("Keeper.PriorityFeeWei", "3120000000")
	viper.SetDefault("Keeper.BlockHistoryLimit", "300")
	viper.SetDefault("Keeper.ProviderRequestsPerSecond", "20")
	viper.SetDefault("Keeper.MaxWorkers", "10")
}

package common

import (
	"context"

	"github.com/api3dao/airkeeper/src/utils/config"
)

type contextKey int

const configKey contextKey = iota

// Attaches the configuration to the context
func SetConfig(ctx context.Context, config *config.Config) context.Context {
	return context.WithValue(ctx, configKey, config)
}

// Gets the configuration back from the context
func GetConfig(ctx context.Context) *config.Config {
	return ctx.Value(configKey).(*config.Config)
}

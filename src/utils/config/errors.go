package config

import "errors"

var (
	ErrInvalidAirnodeConfig   = errors.New("Invalid Airnode configuration file")
	ErrInvalidAirkeeperConfig = errors.New("Invalid Airkeeper configuration file")
)

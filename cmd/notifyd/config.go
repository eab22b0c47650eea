package main

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/esiqveland/notifyd/server"
)

var errParsingConfig = errors.New("failed to parse environment variables into config")

type config struct {
	Server server.Config

	LogLevel string `env:"NOTIFYD_LOG_LEVEL" envDefault:"info"`
	// Selector is the command line of the program that shows a
	// notification's actions and prints the chosen one.
	Selector []string `env:"NOTIFYD_SELECTOR" envSeparator:" "`
}

// loadConfig reads envFiles, or ./.env when none are given, and parses the
// environment.
func loadConfig(envFiles ...string) (config, error) {
	if len(envFiles) == 0 {
		// the default .env file is optional
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return config{}, fmt.Errorf("load env files: %w", err)
	}

	cfg, err := env.ParseAs[config]()
	if err != nil {
		return config{}, errors.Join(errParsingConfig, err)
	}
	if err := cfg.Server.Validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

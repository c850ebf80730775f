// Package clienv resolves what every atelier sub-command needs before it runs:
// the configuration, a logger and a model gateway.
package clienv

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/atelier/pkg/config"
	"github.com/papercomputeco/atelier/pkg/gateway"
	"github.com/papercomputeco/atelier/pkg/logger"
	"github.com/papercomputeco/atelier/pkg/provider/openai"
)

const (
	configFlag = "config"
	debugFlag  = "debug"
)

// AddPersistentFlags registers --config and --debug on the root command.
func AddPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(configFlag, "c", "", "Path to a TOML config file")
	cmd.PersistentFlags().Bool(debugFlag, false, "Enable debug logging")
}

// Env is the resolved runtime of a command.
type Env struct {
	ConfigPath string
	Config     *config.Config
	Logger     *zap.Logger
	Gateway    *gateway.Gateway
}

// Load reads .env and the config file named by --config, builds a logger
// writing to logOut, and wires a gateway to the configured provider. A missing
// API key is not an error here; it surfaces on the first model call.
func Load(cmd *cobra.Command, logOut io.Writer) (*Env, error) {
	path, _ := cmd.Flags().GetString(configFlag)
	debug, _ := cmd.Flags().GetBool(debugFlag)

	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("could not load .env: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	log := logger.NewLoggerTo(logOut, debug)
	client := openai.New(cfg.BaseURL, cfg.APIKey(), log)

	return &Env{
		ConfigPath: path,
		Config:     cfg,
		Logger:     log,
		Gateway:    gateway.New(client, cfg.Profiles(), log),
	}, nil
}

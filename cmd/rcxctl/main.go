package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/danmuck/rcxctl/internal/config"
	"github.com/danmuck/rcxctl/internal/logging"
	"github.com/danmuck/rcxctl/internal/relay"
	"github.com/rs/zerolog/log"
)

const defaultConfigPath = "rcxctl.toml"

func main() {
	logging.ConfigureRuntime()
	if err := run(os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("rcxctl exiting")
		fmt.Fprintf(os.Stderr, "rcxctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := resolveServiceConfig(args)
	if err != nil {
		return err
	}
	log.Info().
		Str("listen_addr", cfg.ListenAddr).
		Str("driver", string(cfg.Driver)).
		Str("serial_port", cfg.SerialPort).
		Str("admin_listen_addr", cfg.AdminListenAddr).
		Msg("rcxctl starting")
	return relay.NewServiceWithConfig(cfg).Run()
}

// resolveServiceConfig loads the config named by the only positional argument,
// else rcxctl.toml when present, else built-in defaults.
func resolveServiceConfig(args []string) (relay.ServiceConfig, error) {
	switch len(args) {
	case 0:
		if _, err := os.Stat(defaultConfigPath); errors.Is(err, fs.ErrNotExist) {
			return relay.DefaultServiceConfig(), nil
		}
		return config.Load(defaultConfigPath)
	case 1:
		return config.Load(args[0])
	default:
		return relay.ServiceConfig{}, fmt.Errorf("usage: rcxctl [config.toml], got %d arguments", len(args))
	}
}

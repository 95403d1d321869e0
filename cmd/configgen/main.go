// configgen writes an rcxctl config template or validates an existing file.
package main

import (
	"fmt"
	"os"

	"github.com/danmuck/rcxctl/internal/config"
	"github.com/danmuck/rcxctl/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	logging.ConfigureRuntime()
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "configgen: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := pflag.NewFlagSet("configgen", pflag.ContinueOnError)
	output := flagSet.StringP("output", "o", "rcxctl.toml", "output path for config template")
	validate := flagSet.Bool("validate", false, "validate an existing config file")
	input := flagSet.StringP("input", "i", "rcxctl.toml", "config path for validation")
	force := flagSet.Bool("force", false, "overwrite existing config file")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if *validate {
		cfg, err := config.Load(*input)
		if err != nil {
			return err
		}
		log.Info().
			Str("path", *input).
			Str("listen_addr", cfg.ListenAddr).
			Str("driver", string(cfg.Driver)).
			Msg("configgen validated config")
		return nil
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		return err
	}
	log.Info().Str("path", *output).Msg("configgen wrote config template")
	return nil
}

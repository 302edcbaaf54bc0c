package main

import (
	"github.com/danmuck/monkeywire/internal/config"
	"github.com/danmuck/monkeywire/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const defaultPath = "cmd/monkeyctl/config.toml"

func main() {
	logging.ConfigureRuntime()

	kind := pflag.String("kind", "local", "config kind: local|remote")
	output := pflag.String("output", "", "output path for config template")
	validate := pflag.Bool("validate", false, "validate an existing config file")
	input := pflag.String("input", "", "config path for validation (defaults to "+defaultPath+")")
	force := pflag.Bool("force", false, "overwrite existing config file")
	pflag.Parse()

	if *validate {
		path := *input
		if path == "" {
			path = defaultPath
		}
		if _, err := config.LoadMonkeyConfig(path); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("configgen validate failed")
		}
		log.Info().Str("path", path).Msg("configgen validated monkeyctl config")
		return
	}

	target := *output
	if target == "" {
		target = defaultPath
	}
	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal().Err(err).Str("path", target).Msg("configgen write failed")
	}
	log.Info().Str("kind", *kind).Str("path", target).Msg("configgen wrote config template")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/monkeywire/internal/admin"
	"github.com/danmuck/monkeywire/internal/config"
	"github.com/danmuck/monkeywire/internal/logging"
	"github.com/danmuck/monkeywire/internal/monkey"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	logging.ConfigureRuntime()
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "monkeyctl: %v\n", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	opts, err := parseOptions(argv)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	appRunner, err := config.Runner(cfg)
	if err != nil {
		return err
	}

	ctrl := monkey.NewController(monkey.ControllerConfig{
		App:             cfg.App,
		Args:            cfg.Args,
		Scripts:         cfg.Scripts,
		MaxPendingBytes: cfg.MaxPendingBytes,
		Runner:          appRunner,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AdminAddr != "" {
		adminCtx, cancelAdmin := context.WithCancel(ctx)
		adminErr := make(chan error, 1)
		srv := admin.NewServer(ctrl, cfg.CorsOrigins)
		go func() {
			adminErr <- srv.Serve(adminCtx, cfg.AdminAddr)
		}()
		defer func() {
			cancelAdmin()
			if err := <-adminErr; err != nil {
				log.Warn().Err(err).Str("addr", cfg.AdminAddr).Msg("monkeyctl admin server stopped")
			}
		}()
	}

	result, runErr := ctrl.Run(ctx)
	log.Info().
		Str("recording", ctrl.Recording().ID()).
		Int("events", result.Events).
		Int("errors", result.Errors).
		Int("parse_errors", result.ParseErrors).
		Msg("monkeyctl session finished")
	if result.Message != "" {
		fmt.Println(result.Message)
	}

	if cfg.RecordingPath != "" {
		if err := ctrl.Recording().Save(cfg.RecordingPath); err != nil {
			return errors.Join(runErr, err)
		}
		log.Info().Str("path", cfg.RecordingPath).Msg("monkeyctl recording saved")
	}
	return runErr
}

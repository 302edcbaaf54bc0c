package config

import (
	"strings"

	"github.com/danmuck/monkeywire/internal/runner"
)

// Runner builds the application runner described by cfg.
func Runner(cfg MonkeyConfig) (runner.Runner, error) {
	if !cfg.Remote.Enabled() {
		return runner.LocalRunner{}, nil
	}
	if err := ValidateRemote(cfg.Remote); err != nil {
		return nil, err
	}
	timeout, err := cfg.Remote.timeout()
	if err != nil {
		return nil, err
	}
	return runner.SSHRunner{
		Host:                        strings.TrimSpace(cfg.Remote.Host),
		Port:                        strings.TrimSpace(cfg.Remote.Port),
		User:                        strings.TrimSpace(cfg.Remote.User),
		KeyPath:                     strings.TrimSpace(cfg.Remote.KeyPath),
		KnownHostsPath:              strings.TrimSpace(cfg.Remote.KnownHostsPath),
		InsecureSkipHostKeyChecking: cfg.Remote.InsecureSkipHostKeyChecking,
		Timeout:                     timeout,
		ConnectAttempts:             cfg.Remote.ConnectAttempts,
		Backoff:                     runner.DefaultBackoff(),
	}, nil
}

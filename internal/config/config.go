package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultMaxPendingBytes bounds the retained stream tail when unset.
const DefaultMaxPendingBytes = 8 * 1024 * 1024

type MonkeyConfig struct {
	App             string       `toml:"app"`
	Args            []string     `toml:"args"`
	Scripts         []string     `toml:"scripts"`
	MaxPendingBytes int          `toml:"max_pending_bytes"`
	AdminAddr       string       `toml:"admin_addr"`
	CorsOrigins     []string     `toml:"cors_origins"`
	RecordingPath   string       `toml:"recording_path"`
	Remote          RemoteConfig `toml:"remote"`
}

// RemoteConfig runs the application over SSH when Host is set.
type RemoteConfig struct {
	Host                        string `toml:"host"`
	Port                        string `toml:"port"`
	User                        string `toml:"user"`
	KeyPath                     string `toml:"key_path"`
	KnownHostsPath              string `toml:"known_hosts_path"`
	InsecureSkipHostKeyChecking bool   `toml:"insecure_skip_host_key_checking"`
	Timeout                     string `toml:"timeout"`
	ConnectAttempts             int    `toml:"connect_attempts"`
}

func (r RemoteConfig) Enabled() bool {
	return strings.TrimSpace(r.Host) != ""
}

func DefaultMonkeyConfig() MonkeyConfig {
	return MonkeyConfig{
		MaxPendingBytes: DefaultMaxPendingBytes,
	}
}

func LoadMonkeyConfig(path string) (MonkeyConfig, error) {
	cfg := DefaultMonkeyConfig()
	if err := loadToml(path, &cfg); err != nil {
		return MonkeyConfig{}, err
	}
	if err := ValidateMonkeyConfig(cfg); err != nil {
		return MonkeyConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

// ValidateMonkeyConfig checks file-level rules. The application path may come
// from the command line, so it is not required here.
func ValidateMonkeyConfig(cfg MonkeyConfig) error {
	if cfg.MaxPendingBytes < 0 {
		return fmt.Errorf("monkey config max_pending_bytes must not be negative")
	}
	for i, script := range cfg.Scripts {
		if strings.TrimSpace(script) == "" {
			return fmt.Errorf("scripts[%d] is empty", i)
		}
	}
	if cfg.Remote.Enabled() {
		if err := ValidateRemote(cfg.Remote); err != nil {
			return fmt.Errorf("remote invalid: %w", err)
		}
	}
	return nil
}

func ValidateRemote(cfg RemoteConfig) error {
	if strings.TrimSpace(cfg.User) == "" {
		return fmt.Errorf("user is required")
	}
	if strings.TrimSpace(cfg.KeyPath) == "" {
		return fmt.Errorf("key_path is required")
	}
	if _, err := cfg.timeout(); err != nil {
		return err
	}
	if cfg.ConnectAttempts < 0 {
		return fmt.Errorf("connect_attempts must not be negative")
	}
	return nil
}

func (r RemoteConfig) timeout() (time.Duration, error) {
	raw := strings.TrimSpace(r.Timeout)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout must not be negative")
	}
	return d, nil
}

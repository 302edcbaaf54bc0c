package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/danmuck/monkeywire/internal/config"
	"github.com/danmuck/monkeywire/internal/monkey"
	"github.com/danmuck/monkeywire/internal/testutil/testlog"
)

func TestSplitArgs(t *testing.T) {
	testlog.Start(t)
	tests := []struct {
		name    string
		argv    []string
		driver  []string
		app     string
		appArgs []string
		wantErr bool
	}{
		{
			name:    "app args pass through",
			argv:    []string{"--script", "a.txt", "--user-app", "/bin/app", "--script", "-v"},
			driver:  []string{"--script", "a.txt"},
			app:     "/bin/app",
			appArgs: []string{"--script", "-v"},
		},
		{
			name:    "equals form",
			argv:    []string{"--user-app=/bin/app", "x"},
			driver:  []string{},
			app:     "/bin/app",
			appArgs: []string{"x"},
		},
		{
			name:    "no app",
			argv:    []string{"--config", "c.toml"},
			driver:  []string{"--config", "c.toml"},
			appArgs: nil,
		},
		{
			name:    "missing path",
			argv:    []string{"--user-app"},
			wantErr: true,
		},
		{
			name:    "empty equals path",
			argv:    []string{"--user-app="},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, app, appArgs, err := splitArgs(tt.argv)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("split: %v", err)
			}
			if len(driver) != len(tt.driver) || (len(driver) > 0 && !reflect.DeepEqual(driver, tt.driver)) {
				t.Fatalf("driver: got %v want %v", driver, tt.driver)
			}
			if app != tt.app {
				t.Fatalf("app: got %q want %q", app, tt.app)
			}
			if !reflect.DeepEqual(appArgs, tt.appArgs) {
				t.Fatalf("app args: got %v want %v", appArgs, tt.appArgs)
			}
		})
	}
}

func TestParseOptionsFlags(t *testing.T) {
	testlog.Start(t)
	opts, err := parseOptions([]string{
		"--script", "one.txt", "--script", "two.txt",
		"--admin-addr", "127.0.0.1:9300", "--record-out", "rec.toml",
		"--max-pending", "1024",
		"--user-app", "/bin/app", "-x",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(opts.scripts, []string{"one.txt", "two.txt"}) {
		t.Fatalf("unexpected scripts: %v", opts.scripts)
	}
	if opts.adminAddr != "127.0.0.1:9300" || opts.recordOut != "rec.toml" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if !opts.maxPendingSet || opts.maxPending != 1024 {
		t.Fatalf("unexpected max pending: %+v", opts)
	}
	if opts.app != "/bin/app" || !reflect.DeepEqual(opts.appArgs, []string{"-x"}) {
		t.Fatalf("unexpected app: %q %v", opts.app, opts.appArgs)
	}
}

func TestParseOptionsRejectsStrayArgs(t *testing.T) {
	testlog.Start(t)
	if _, err := parseOptions([]string{"stray", "--user-app", "/bin/app"}); err == nil {
		t.Fatalf("expected stray argument error")
	}
}

func TestResolveConfigOverlaysFile(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "monkey.toml")
	data := `app = "/bin/from-file"
args = ["--file"]
scripts = ["base.txt"]
max_pending_bytes = 4096
admin_addr = "127.0.0.1:9000"
recording_path = "file.toml"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := resolveConfig(options{
		configPath: path,
		scripts:    []string{"extra.txt"},
		recordOut:  "flag.toml",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.App != "/bin/from-file" || !reflect.DeepEqual(cfg.Args, []string{"--file"}) {
		t.Fatalf("unexpected app: %q %v", cfg.App, cfg.Args)
	}
	if !reflect.DeepEqual(cfg.Scripts, []string{"base.txt", "extra.txt"}) {
		t.Fatalf("unexpected scripts: %v", cfg.Scripts)
	}
	if cfg.MaxPendingBytes != 4096 {
		t.Fatalf("unexpected max pending: %d", cfg.MaxPendingBytes)
	}
	if cfg.AdminAddr != "127.0.0.1:9000" || cfg.RecordingPath != "flag.toml" {
		t.Fatalf("unexpected addr/recording: %q %q", cfg.AdminAddr, cfg.RecordingPath)
	}

	cfg, err = resolveConfig(options{configPath: path, app: "/bin/flag", maxPending: 10, maxPendingSet: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.App != "/bin/flag" || len(cfg.Args) != 0 {
		t.Fatalf("expected flag app to replace file app: %q %v", cfg.App, cfg.Args)
	}
	if cfg.MaxPendingBytes != 10 {
		t.Fatalf("unexpected max pending: %d", cfg.MaxPendingBytes)
	}
}

func TestResolveConfigRequiresApp(t *testing.T) {
	testlog.Start(t)
	_, err := resolveConfig(options{})
	if !errors.Is(err, monkey.ErrAppRequired) {
		t.Fatalf("expected ErrAppRequired, got %v", err)
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := resolveConfig(options{app: "/bin/app"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.MaxPendingBytes != config.DefaultMaxPendingBytes {
		t.Fatalf("unexpected default max pending: %d", cfg.MaxPendingBytes)
	}
	if cfg.Remote.Enabled() {
		t.Fatalf("expected local runner by default")
	}
}

func TestExampleConfigLoads(t *testing.T) {
	testlog.Start(t)
	cfg, err := resolveConfig(options{configPath: "ex.config.toml"})
	if err != nil {
		t.Fatalf("resolve example config: %v", err)
	}
	if cfg.App != "./bin/monkeyecho" {
		t.Fatalf("unexpected app: %q", cfg.App)
	}
	if cfg.MaxPendingBytes != 1048576 {
		t.Fatalf("unexpected max pending: %d", cfg.MaxPendingBytes)
	}
	if !reflect.DeepEqual(cfg.CorsOrigins, []string{"http://localhost:3000"}) {
		t.Fatalf("unexpected cors origins: %v", cfg.CorsOrigins)
	}
}

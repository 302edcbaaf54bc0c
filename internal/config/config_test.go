package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/monkeywire/internal/runner"
	"github.com/danmuck/monkeywire/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "monkey.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMonkeyConfigDefaults(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `app = "/bin/app"`+"\n")
	cfg, err := LoadMonkeyConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App != "/bin/app" {
		t.Fatalf("unexpected app: %q", cfg.App)
	}
	if cfg.MaxPendingBytes != DefaultMaxPendingBytes {
		t.Fatalf("expected default max pending, got %d", cfg.MaxPendingBytes)
	}
	if cfg.Remote.Enabled() {
		t.Fatalf("expected remote disabled")
	}
}

func TestLoadMonkeyConfigTemplates(t *testing.T) {
	testlog.Start(t)
	for _, kind := range []string{"local", "remote"} {
		path := filepath.Join(t.TempDir(), kind+".toml")
		if err := WriteTemplate(path, kind, false); err != nil {
			t.Fatalf("write %s template: %v", kind, err)
		}
		if err := WriteTemplate(path, kind, false); err == nil {
			t.Fatalf("expected %s template overwrite refused", kind)
		}
		cfg, err := LoadMonkeyConfig(path)
		if err != nil {
			t.Fatalf("load %s template: %v", kind, err)
		}
		if cfg.App == "" {
			t.Fatalf("%s template missing app", kind)
		}
	}
	if _, err := Template("gui"); err == nil {
		t.Fatalf("expected unknown kind rejected")
	}
}

func TestValidateMonkeyConfigRejects(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name string
		cfg  MonkeyConfig
		want string
	}{
		{name: "negative pending", cfg: MonkeyConfig{MaxPendingBytes: -1}, want: "max_pending_bytes"},
		{name: "blank script", cfg: MonkeyConfig{Scripts: []string{" "}}, want: "scripts[0]"},
		{name: "remote no user", cfg: MonkeyConfig{Remote: RemoteConfig{Host: "h", KeyPath: "k"}}, want: "user"},
		{name: "remote no key", cfg: MonkeyConfig{Remote: RemoteConfig{Host: "h", User: "u"}}, want: "key_path"},
		{name: "remote timeout", cfg: MonkeyConfig{Remote: RemoteConfig{Host: "h", User: "u", KeyPath: "k", Timeout: "soon"}}, want: "timeout"},
		{name: "remote attempts", cfg: MonkeyConfig{Remote: RemoteConfig{Host: "h", User: "u", KeyPath: "k", ConnectAttempts: -2}}, want: "connect_attempts"},
	}
	for _, tc := range cases {
		err := ValidateMonkeyConfig(tc.cfg)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}
}

func TestRunnerSelection(t *testing.T) {
	testlog.Start(t)
	r, err := Runner(DefaultMonkeyConfig())
	if err != nil {
		t.Fatalf("local runner: %v", err)
	}
	if _, ok := r.(runner.LocalRunner); !ok {
		t.Fatalf("expected LocalRunner, got %T", r)
	}

	cfg := DefaultMonkeyConfig()
	cfg.Remote = RemoteConfig{Host: " box ", User: "monkey", KeyPath: "/k", Timeout: "3s", ConnectAttempts: 4}
	r, err = Runner(cfg)
	if err != nil {
		t.Fatalf("ssh runner: %v", err)
	}
	ssh, ok := r.(runner.SSHRunner)
	if !ok {
		t.Fatalf("expected SSHRunner, got %T", r)
	}
	if ssh.Host != "box" || ssh.Timeout.Seconds() != 3 || ssh.ConnectAttempts != 4 {
		t.Fatalf("unexpected ssh runner: %+v", ssh)
	}
}

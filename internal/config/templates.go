package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "local":
		return localTemplate, nil
	case "remote":
		return remoteTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const localTemplate = `app = "./bin/app-under-test"
args = []
scripts = []
max_pending_bytes = 8388608
admin_addr = "127.0.0.1:9300"
cors_origins = ["http://localhost:3000"]
recording_path = "recording.toml"
`

const remoteTemplate = `app = "/opt/app-under-test/bin/app"
args = ["--monkey"]
scripts = []
max_pending_bytes = 8388608
admin_addr = "127.0.0.1:9300"
recording_path = "recording.toml"

[remote]
host = "testbox.local"
port = "22"
user = "monkey"
key_path = "~/.ssh/id_ed25519"
known_hosts_path = ""
insecure_skip_host_key_checking = false
timeout = "10s"
connect_attempts = 3
`
